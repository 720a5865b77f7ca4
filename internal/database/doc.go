// Package database provides SQLite storage for the edit history of the media
// editor.
//
// Every submitted edit is recorded when it is queued and updated once it
// reaches a terminal state, together with its error, publish warning and a
// summary of the produced file.
//
// The database uses WAL mode for improved concurrent read performance
// and includes automatic schema initialization.
package database
