// Package audio plays synthesized PCM through the system audio device
// using the oto/v3 library. Builds tagged nocgo get a stub that reports
// ErrAudioUnavailable.
package audio
