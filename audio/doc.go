// Package audio contains core.AudioStore implementations for persisting
// synthesized speech. The FileStore writes each payload under a fresh unique
// filename so the transport can play it back; the in-memory store serves
// tests and single-process prototypes.
package audio
