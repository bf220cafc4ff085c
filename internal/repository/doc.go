// Package repository owns the in-memory collection of projects and
// reconciles it with the remote service.
//
// Save stores a project and reports every dirty entity to the tracking
// recorder. UploadProject walks one project top-down, issuing one remote
// call per dirty entity, and either acknowledges the whole walk or changes
// nothing locally.
//
// Thread-safety model:
//   - Save, Load, Projects, Project, Pending: safe from any goroutine, never
//     block on network calls
//   - UploadProject: safe from any goroutine; uploads of the same project id
//     run one at a time, uploads of different ids run concurrently
//
// An edit saved while its project is being uploaded is not lost: the upload
// acknowledges only what it actually sent, and the newer edit stays dirty
// for the next upload.
package repository
