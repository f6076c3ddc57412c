//go:build js && wasm

// Command speechbridge-wasm publishes a TextToSpeech object on the page's
// global scope, backed by the browser's speech synthesis.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/dgnsrekt/speechbridge/tts"
	"github.com/dgnsrekt/speechbridge/tts/engines/browser"
)

func main() {
	var synth tts.Synthesizer
	if s, ok := browser.Detect(); ok {
		synth = s
	}
	adapter := tts.NewAdapter(synth)

	js.Global().Set("TextToSpeech", exports(adapter))

	// Keep the Go runtime alive for callbacks
	select {}
}

// exports builds the JS object. Every method returns a Promise.
func exports(adapter *tts.Adapter) js.Value {
	ctx := context.Background()
	obj := js.Global().Get("Object").New()

	method := func(name string, fn func(arg js.Value) (any, error)) {
		obj.Set(name, js.FuncOf(func(_ js.Value, args []js.Value) any {
			arg := js.Undefined()
			if len(args) > 0 {
				arg = args[0]
			}
			return promise(func() (any, error) { return fn(arg) })
		}))
	}

	method("speak", func(arg js.Value) (any, error) {
		var options tts.Options
		if err := decode(arg, &options); err != nil {
			return nil, err
		}
		return nil, adapter.Speak(ctx, options)
	})
	method("stop", func(js.Value) (any, error) {
		return nil, adapter.Stop(ctx)
	})
	method("getSupportedLanguages", func(js.Value) (any, error) {
		languages, err := adapter.GetSupportedLanguages(ctx)
		if err != nil {
			return nil, err
		}
		return encode(languages)
	})
	method("getSupportedVoices", func(js.Value) (any, error) {
		voices, err := adapter.GetSupportedVoices(ctx)
		if err != nil {
			return nil, err
		}
		return encode(voices)
	})
	method("openInstall", func(js.Value) (any, error) {
		return nil, adapter.OpenInstall(ctx)
	})
	method("setPitchRate", func(arg js.Value) (any, error) {
		var options tts.PitchRateOptions
		if err := decode(arg, &options); err != nil {
			return nil, err
		}
		return nil, adapter.SetPitchRate(ctx, options)
	})
	method("setSpeechRate", func(arg js.Value) (any, error) {
		var options tts.SpeechRateOptions
		if err := decode(arg, &options); err != nil {
			return nil, err
		}
		return nil, adapter.SetSpeechRate(ctx, options)
	})

	return obj
}

// promise runs fn on a goroutine and settles a JS Promise with its result.
func promise(fn func() (any, error)) js.Value {
	executor := js.FuncOf(func(_ js.Value, args []js.Value) any {
		resolve, reject := args[0], args[1]
		go func() {
			value, err := fn()
			if err != nil {
				reject.Invoke(rejection(err))
				return
			}
			if value == nil {
				resolve.Invoke()
				return
			}
			resolve.Invoke(value)
		}()
		return nil
	})
	// The executor runs synchronously inside the constructor.
	defer executor.Release()

	return js.Global().Get("Promise").New(executor)
}

// rejection converts err into a rejection value. Host synthesis errors
// reject with the original event.
func rejection(err error) js.Value {
	var synthErr *tts.SynthesisError
	if errors.As(err, &synthErr) {
		if event, ok := synthErr.Payload.(js.Value); ok && event.Truthy() {
			return event
		}
	}
	return js.Global().Get("Error").New(err.Error())
}

// decode reads a plain JS object through JSON.
func decode(arg js.Value, v any) error {
	if arg.IsUndefined() || arg.IsNull() {
		return nil
	}
	raw := js.Global().Get("JSON").Call("stringify", arg).String()
	return json.Unmarshal([]byte(raw), v)
}

// encode builds a plain JS object through JSON.
func encode(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return js.Global().Get("JSON").Call("parse", string(raw)), nil
}
