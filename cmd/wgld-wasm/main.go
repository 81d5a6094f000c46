//go:build js && wasm

// Command wgld-wasm runs a demo on a page's canvas. The demo is named by
// the canvas's data-demo attribute and defaults to w015.
package main

import (
	"github.com/paperboard/example/demo"
	"github.com/paperboard/example/gfx"
	"github.com/paperboard/example/gfx/webgl"
	"github.com/paperboard/example/internal/logging"
	"go.uber.org/zap"
)

const canvasID = "glcanvas"

func main() {
	log, err := logging.New("info")
	if err != nil {
		panic(err)
	}

	canvas, err := webgl.FindCanvas(canvasID)
	if err != nil {
		log.Error("no canvas to draw on", zap.Error(err))
		return
	}
	name := "w015"
	if v := canvas.Get("dataset").Get("demo"); v.Truthy() {
		name = v.String()
	}
	d, err := demo.New(name)
	if err != nil {
		log.Error("unknown demo", zap.Error(err))
		return
	}

	ctx, err := webgl.NewContext(canvas)
	if err != nil {
		log.Error("unable to initialize WebGL", zap.Error(err))
		return
	}
	width, height := ctx.Size()
	r := gfx.NewRenderer(ctx, log, width, height)
	opts := demo.Options{ContextLost: ctx.IsContextLost}
	if _, err := demo.Start(d, r, webgl.NewScheduler(), log, opts); err != nil {
		log.Error("demo failed", zap.Error(err))
		return
	}

	// frames are delivered by the browser from here on
	select {}
}
