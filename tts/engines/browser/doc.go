// Package browser binds the Web Speech API (window.speechSynthesis) to
// tts.Synthesizer. It only does anything in js/wasm builds.
package browser
