// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package output renders per-iteration frames and stores them in a sink.
package output

import (
	"bytes"
	"strconv"

	"galax/sim/world"
)

// Frame geometry: the simulation square maps onto an 800px plot inside a
// 850px viewBox with a 25px margin on every side.
const (
	viewBox    = 850
	plot       = 800
	margin     = 25
	bodyRadius = 10
)

const svgHeader = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 850 850">` + "\n"

// RenderSVG renders one frame: a circle per body, placed by the iteration's
// boundary, coloured by the body's colour tag.
func RenderSVG(bodies []world.Body, boundary world.Boundary) []byte {
	size := boundary.Size()
	scale := 0.0
	if size > 0 {
		scale = plot / size
	}

	var buf bytes.Buffer
	buf.Grow(len(svgHeader) + len(bodies)*64 + 8)
	buf.WriteString(svgHeader)

	// Temp buf for coordinate strings
	tmp := make([]byte, 0, 24)
	for i := range bodies {
		body := &bodies[i]

		buf.WriteString(`<circle cx="`)
		buf.Write(strconv.AppendFloat(tmp, (body.Position.X-boundary.Min.X)*scale+margin, 'f', 2, 64))
		buf.WriteString(`" cy="`)
		buf.Write(strconv.AppendFloat(tmp, (body.Position.Y-boundary.Min.Y)*scale+margin, 'f', 2, 64))
		buf.WriteString(`" r="`)
		buf.Write(strconv.AppendInt(tmp, bodyRadius, 10))
		buf.WriteString(`" fill="`)
		buf.WriteString(fill(body.Color))
		buf.WriteString("\"/>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func fill(color uint8) string {
	switch color {
	case 1:
		return "blue"
	case 2:
		return "orange"
	default:
		return "black"
	}
}
