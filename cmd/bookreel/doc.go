// Package main hosts the bookreel CLI entrypoint and command graph.
//
// The Cobra-based command tree maps terminal invocations onto pipeline
// stages: chapter synthesis, duration analysis, segment packing, video
// rendering, the optional remote upload, and configuration scaffolding. It
// centralizes configuration resolution and logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
