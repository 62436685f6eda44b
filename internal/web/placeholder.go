package web

import (
	"hash/fnv"
	"image"
	"image/color"
)

// Pixel-art palette shared with the stylesheet.
var (
	pixelBlack  = color.RGBA{0x18, 0x14, 0x28, 255} // dark purple-black
	pixelSky    = color.RGBA{0x45, 0x2c, 0x5c, 255} // deep purple
	pixelWater  = color.RGBA{0x2d, 0x3a, 0x5c, 255} // deep blue
	pixelSand   = color.RGBA{0x8b, 0x73, 0x55, 255} // warm tan
	pixelStone  = color.RGBA{0x55, 0x55, 0x66, 255} // grey stone
	pixelGreen  = color.RGBA{0x2d, 0x5a, 0x3d, 255} // muted green
	pixelBright = color.RGBA{0x6b, 0x8c, 0x5a, 255} // lighter green
	pixelWarm   = color.RGBA{0xc4, 0x6c, 0x32, 255} // warm orange
	pixelBone   = color.RGBA{0xd8, 0xd0, 0xc0, 255} // off-white
)

// fieldColors are the shield backgrounds a name can hash to.
var fieldColors = []color.RGBA{pixelSky, pixelWater, pixelGreen, pixelStone, pixelSand}

// chargeColors are the emblem colors drawn on the field.
var chargeColors = []color.RGBA{pixelWarm, pixelBright, pixelBone, pixelSand}

const blockPx = 8
const sigilW, sigilH = 96, 112
const blocksW, blocksH = sigilW / blockPx, sigilH / blockPx

// fillBlock fills one 8×8 block at block coords (bx, by) with clr.
func fillBlock(img *image.RGBA, bx, by int, clr color.RGBA) {
	for dy := 0; dy < blockPx; dy++ {
		for dx := 0; dx < blockPx; dx++ {
			x := bx*blockPx + dx
			y := by*blockPx + dy
			if x < sigilW && y < sigilH {
				img.SetRGBA(x, y, clr)
			}
		}
	}
}

// inShield reports whether block (bx, by) lies inside the heater-shield
// outline: square top, tapering to a point over the bottom third.
func inShield(bx, by int) bool {
	if bx < 1 || bx >= blocksW-1 || by < 1 || by >= blocksH-1 {
		return false
	}
	taperStart := blocksH * 2 / 3
	if by < taperStart {
		return true
	}
	inset := by - taperStart + 1
	return bx >= 1+inset && bx < blocksW-1-inset
}

// generatePlaceholder draws a blocky coat of arms derived from name, so each
// character without an uploaded portrait is still recognisable at a glance.
// The slain get a greyed-out shield with a black bar across it.
func generatePlaceholder(name string, alive bool) image.Image {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum64()

	field := fieldColors[sum%uint64(len(fieldColors))]
	charge := chargeColors[(sum>>8)%uint64(len(chargeColors))]
	if !alive {
		field, charge = pixelStone, pixelBlack
	}

	img := image.NewRGBA(image.Rect(0, 0, sigilW, sigilH))
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			fillBlock(img, bx, by, pixelBlack)
		}
	}

	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			if inShield(bx, by) {
				fillBlock(img, bx, by, field)
			}
		}
	}

	// Mirrored emblem: bits of the hash pick blocks in the left half of the
	// inner field and reflect them right.
	bits := sum >> 16
	half := blocksW / 2
	for by := 3; by < blocksH-4; by++ {
		for bx := 2; bx < half; bx++ {
			on := bits&1 == 1
			bits >>= 1
			if bits == 0 {
				bits = sum
			}
			if !on {
				continue
			}
			mx := blocksW - 1 - bx
			if inShield(bx, by) && inShield(mx, by) {
				fillBlock(img, bx, by, charge)
				fillBlock(img, mx, by, charge)
			}
		}
	}

	if !alive {
		for bx := 1; bx < blocksW-1; bx++ {
			fillBlock(img, bx, blocksH/2-1, pixelBlack)
		}
	}
	return img
}
