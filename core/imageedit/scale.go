// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package imageedit

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleImage - resizes to newWidth across, preserving the aspect ratio. Returns img untouched if
// newWidth is not positive or it's already that size
func ScaleImage(img image.Image, newWidth int) image.Image {
	bounds := img.Bounds()
	if newWidth <= 0 || newWidth == bounds.Dx() {
		return img
	}

	w := newWidth
	h := int(float32(bounds.Dy())/float32(bounds.Dx())*float32(w) + 0.5)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Rect, img, bounds, draw.Over, nil)

	return dst
}
