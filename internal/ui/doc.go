// Package ui implements the interactive terminal view of an import run
// using bubbletea's Elm architecture.
//
// The single [Model] drives two screens: a live progress view while the
// engine fetches, matches, and adds tracks, and a result view summarizing
// outcomes once the run finishes. Progress updates flow through the
// engine's channel and are re-subscribed after every message, keeping the
// render loop non-blocking.
package ui
