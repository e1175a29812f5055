// Package services implements the driving ports: ingesting a source,
// searching and reporting on a collection, token analysis and summaries.
// Stores, embedders, fetchers and models arrive as driven ports, so a
// service never knows which backend it is talking to.
package services
