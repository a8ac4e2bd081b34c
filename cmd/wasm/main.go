//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/nineyards/whiteboard/backend-go/internal/document"
	"github.com/nineyards/whiteboard/backend-go/internal/engine"
	"github.com/nineyards/whiteboard/backend-go/internal/render"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
)

var (
	eng      *engine.Engine
	recorder *render.Recorder
)

func main() {
	recorder = render.NewRecorder(defaultWidth, defaultHeight)
	if err := start(engine.DefaultSettings()); err != nil {
		js.Global().Get("console").Call("error", err.Error())
		return
	}

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadBoard", js.FuncOf(loadBoard))
	api.Set("loadSampleBoard", js.FuncOf(loadSampleBoard))
	api.Set("resize", js.FuncOf(resize))
	api.Set("pointerDown", js.FuncOf(pointerHandler((*engine.Engine).PointerDown)))
	api.Set("pointerMove", js.FuncOf(pointerHandler((*engine.Engine).PointerMove)))
	api.Set("pointerUp", js.FuncOf(pointerHandler((*engine.Engine).PointerUp)))
	api.Set("blur", js.FuncOf(action(func() { eng.Blur() })))
	api.Set("keyDown", js.FuncOf(keyDown))
	api.Set("wheel", js.FuncOf(wheel))
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("patchSelected", js.FuncOf(patchSelected))
	api.Set("setBackground", js.FuncOf(setBackground))
	api.Set("undo", js.FuncOf(action(func() { eng.Undo() })))
	api.Set("redo", js.FuncOf(action(func() { eng.Redo() })))
	api.Set("copy", js.FuncOf(action(func() { eng.Copy() })))
	api.Set("cut", js.FuncOf(action(func() { eng.Cut() })))
	api.Set("paste", js.FuncOf(action(func() { eng.Paste() })))
	api.Set("deleteSelected", js.FuncOf(action(func() { eng.DeleteSelected() })))
	api.Set("bringToFront", js.FuncOf(action(func() { eng.BringToFront() })))
	api.Set("sendToBack", js.FuncOf(action(func() { eng.SendToBack() })))
	api.Set("on", js.FuncOf(on))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(renderFrame))
	api.Set("getBoard", js.FuncOf(getBoard))
	api.Set("getSelection", js.FuncOf(getSelection))
	api.Set("getState", js.FuncOf(getState))
	api.Set("hitTest", js.FuncOf(hitTest))

	js.Global().Set("whiteboardEngine", api)
	js.Global().Set("whiteboardWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// start replaces the running engine. Listeners registered through on are
// dropped with the old engine.
func start(s engine.Settings) error {
	w, h := recorder.Size()
	s.Width, s.Height = w, h
	next, err := engine.Replace(eng, recorder, render.NewSketchGenerator(), s)
	if err != nil {
		return err
	}
	eng = next
	return nil
}

func ok() any { return js.ValueOf(map[string]any{"ok": true}) }

func fail(err error) any { return js.ValueOf(map[string]any{"error": err.Error()}) }

func missing(what string) any { return js.ValueOf(map[string]any{"error": "missing " + what}) }

func decodeArg(args []js.Value, v any) error {
	return json.Unmarshal([]byte(args[0].String()), v)
}

func action(fn func()) func(js.Value, []js.Value) any {
	return func(js.Value, []js.Value) any {
		fn()
		return nil
	}
}

// --- Command Handlers ---

func loadBoard(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("board JSON")
	}
	var b document.Board
	if err := decodeArg(args, &b); err != nil {
		return fail(err)
	}
	if err := start(settingsFor(&b)); err != nil {
		return fail(err)
	}
	return ok()
}

func loadSampleBoard(this js.Value, args []js.Value) any {
	boardID := "board_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		boardID = args[0].String()
	}
	if err := start(settingsFor(document.NewSampleBoard(boardID))); err != nil {
		return fail(err)
	}
	return ok()
}

func settingsFor(b *document.Board) engine.Settings {
	s := engine.DefaultSettings()
	s.Elements = b.Elements
	s.Viewport = b.Viewport
	s.Background = b.Background
	return s
}

func resize(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return missing("width and height")
	}
	if err := eng.Resize(args[0].Int(), args[1].Int()); err != nil {
		return fail(err)
	}
	return ok()
}

func pointerHandler(fn func(*engine.Engine, engine.PointerEvent)) func(js.Value, []js.Value) any {
	return func(this js.Value, args []js.Value) any {
		if len(args) < 1 {
			return missing("pointer event JSON")
		}
		var ev engine.PointerEvent
		if err := decodeArg(args, &ev); err != nil {
			return fail(err)
		}
		fn(eng, ev)
		return nil
	}
}

func keyDown(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	var ev engine.KeyEvent
	if err := decodeArg(args, &ev); err != nil {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.KeyDown(ev))
}

func wheel(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("wheel event JSON")
	}
	var ev engine.WheelEvent
	if err := decodeArg(args, &ev); err != nil {
		return fail(err)
	}
	eng.Wheel(ev)
	return nil
}

func setTool(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(false)
	}
	return js.ValueOf(eng.SetTool(engine.Tool(args[0].String())))
}

func setSelection(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.ClearSelection()
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.Select(ids)
	return nil
}

// patchSelected takes an options JSON object and whether to record the
// change in history. Without the flag the patch is committed.
func patchSelected(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return missing("options JSON")
	}
	var patch document.Options
	if err := decodeArg(args, &patch); err != nil {
		return fail(err)
	}
	commit := len(args) < 2 || args[1].Bool()
	eng.PatchSelected(patch, commit)
	return ok()
}

func setBackground(this js.Value, args []js.Value) any {
	color := ""
	if len(args) > 0 {
		color = args[0].String()
	}
	eng.SetBackground(color)
	return nil
}

// on subscribes a callback to an engine event. The callback receives the
// event as JSON. The returned function unsubscribes.
func on(this js.Value, args []js.Value) any {
	if len(args) < 2 || args[1].Type() != js.TypeFunction {
		return missing("event type and callback")
	}
	cb := args[1]
	off := eng.On(engine.EventType(args[0].String()), func(ev engine.Event) {
		data, err := json.Marshal(eventJSON(ev))
		if err != nil {
			return
		}
		cb.Invoke(string(data))
	})

	var unsubscribe js.Func
	unsubscribe = js.FuncOf(func(js.Value, []js.Value) any {
		off()
		unsubscribe.Release()
		return nil
	})
	return unsubscribe
}

func eventJSON(ev engine.Event) map[string]any {
	out := map[string]any{"type": ev.Type}
	switch ev.Type {
	case engine.EventElementsChanged:
		out["elements"] = ev.Elements
	case engine.EventViewportChanged:
		out["viewport"] = ev.Viewport
	case engine.EventToolSelected:
		out["tool"] = ev.Tool
	case engine.EventSelectionUpdated:
		out["selected"] = ev.Selected
	}
	return out
}

// --- Query Handlers ---

// renderFrame returns the last drawn frame as canvas draw commands.
func renderFrame(this js.Value, args []js.Value) any {
	data, err := recorder.JSON()
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(data)
}

func getBoard(this js.Value, args []js.Value) any {
	data, err := json.Marshal(document.Board{
		Background: eng.Background(),
		Viewport:   eng.Viewport(),
		Elements:   eng.Elements(),
	})
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getSelection(this js.Value, args []js.Value) any {
	data, err := json.Marshal(map[string]any{
		"ids":    eng.Selection().IDs(),
		"bounds": eng.Selection().Bounds(),
	})
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getState(this js.Value, args []js.Value) any {
	return js.ValueOf(map[string]any{
		"tool":    string(eng.Tool()),
		"state":   string(eng.State()),
		"cursor":  eng.Cursor(),
		"frames":  eng.Frames(),
		"canUndo": eng.History().CanUndo(),
		"canRedo": eng.History().CanRedo(),
	})
}

func hitTest(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.Null()
	}
	el := eng.ElementAt(args[0].Float(), args[1].Float())
	if el == nil {
		return js.Null()
	}
	return js.ValueOf(el.ID)
}
