// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

// Kinetic sums ½mv² over all bodies.
func (h *Hub) Kinetic() float64 {
	var kinetic float64
	for i := range h.bodies {
		kinetic += h.bodies[i].KineticEnergy()
	}
	return kinetic
}

// Potential sums -G·m₁·m₂/d over all pairs, skipping pairs inside the
// softening distance. O(N²); diagnostics and tests only.
func (h *Hub) Potential() float64 {
	var potential float64
	for i := range h.bodies {
		for j := i + 1; j < len(h.bodies); j++ {
			d := h.bodies[i].Position.Distance(h.bodies[j].Position)
			if d <= h.config.Epsilon {
				continue
			}
			potential -= h.config.G * h.bodies[i].Mass * h.bodies[j].Mass / d
		}
	}
	return potential
}

// Energy is the total mechanical energy of the system.
func (h *Hub) Energy() float64 {
	return h.Kinetic() + h.Potential()
}
