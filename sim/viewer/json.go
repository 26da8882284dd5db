// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package viewer

import (
	"reflect"
	"unsafe"

	"github.com/chewxy/math32"
	jsoniter "github.com/json-iterator/go"

	"galax/sim/world"
)

// View geometry matches the SVG frames: an 800px plot with a 25px margin.
const (
	viewBox  = 850
	viewPlot = 800
	viewPad  = 25
)

// viewBody is one body mapped into view coordinates. Precision past f32 is
// invisible at this resolution, so positions are quantized before encoding.
type viewBody struct {
	X     float32
	Y     float32
	Color uint8
}

// Make sure functions get run first
var json = func() jsoniter.API {
	neverEmpty := func(pointer unsafe.Pointer) bool { return false }

	jsoniter.RegisterTypeEncoderFunc(reflect.TypeOf(viewBody{}).String(), encodeViewBody, neverEmpty)

	return jsoniter.Config{
		MarshalFloatWith6Digits:       true,
		EscapeHTML:                    false,
		SortMapKeys:                   true,
		ObjectFieldMustBeSimpleString: true,
		CaseSensitive:                 true,
	}.Froze()
}()

// Bodies encode as compact [x, y, color] triples.
func encodeViewBody(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	body := (*viewBody)(ptr)
	stream.WriteArrayStart()
	stream.WriteFloat32Lossy(body.X)
	stream.WriteMore()
	stream.WriteFloat32Lossy(body.Y)
	stream.WriteMore()
	stream.WriteUint8(body.Color)
	stream.WriteArrayEnd()
}

type (
	frameMessage struct {
		Iteration int        `json:"iteration"`
		Size      float32    `json:"size"`
		Bodies    []viewBody `json:"bodies"`
	}

	statusMessage struct {
		Iteration int     `json:"iteration"`
		Bodies    int     `json:"bodies"`
		Size      float32 `json:"size"`
	}
)

func encodeFrame(iteration int, bodies []world.Body, boundary world.Boundary) []byte {
	size := boundary.Size()
	var scale float32
	if size > 0 {
		scale = viewPlot / float32(size)
	}

	message := frameMessage{
		Iteration: iteration,
		Size:      float32(size),
		Bodies:    make([]viewBody, len(bodies)),
	}
	for i := range bodies {
		body := &bodies[i]
		message.Bodies[i] = viewBody{
			X:     math32.Min(math32.Max(float32(body.Position.X-boundary.Min.X)*scale+viewPad, 0), viewBox),
			Y:     math32.Min(math32.Max(float32(body.Position.Y-boundary.Min.Y)*scale+viewPad, 0), viewBox),
			Color: body.Color,
		}
	}

	buf, err := json.Marshal(&message)
	if err != nil {
		return nil
	}
	return buf
}

func encodeStatus(iteration, bodies int, boundary world.Boundary) []byte {
	buf, err := json.Marshal(&statusMessage{
		Iteration: iteration,
		Bodies:    bodies,
		Size:      float32(boundary.Size()),
	})
	if err != nil {
		return nil
	}
	return buf
}
