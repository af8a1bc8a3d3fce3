package blend

import "github.com/gogpu/paint"

// Pixel composites one premultiplied RGBA source pixel over a destination
// pixel using the given mode. Inputs and outputs are premultiplied, the
// in-memory format of image.RGBA.
func Pixel(mode paint.CompositingMode, sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
	switch mode {
	case paint.ModeMultiply:
		return separable(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
	case paint.ModeScreen:
		return separable(sr, sg, sb, sa, dr, dg, db, da, screenChan)
	case paint.ModeOverlay:
		return separable(sr, sg, sb, sa, dr, dg, db, da, overlayChan)
	case paint.ModeDarken:
		return separable(sr, sg, sb, sa, dr, dg, db, da, minByte)
	case paint.ModeLighten:
		return separable(sr, sg, sb, sa, dr, dg, db, da, maxByte)
	default:
		return SourceOver(sr, sg, sb, sa, dr, dg, db, da)
	}
}

// SourceOver is standard premultiplied alpha compositing:
// out = S + D * (1 - Sa).
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	inv := 255 - sa
	r = addDiv255(sr, mulDiv255(dr, inv))
	g = addDiv255(sg, mulDiv255(dg, inv))
	b = addDiv255(sb, mulDiv255(db, inv))
	a = addDiv255(sa, mulDiv255(da, inv))
	return r, g, b, a
}

// separable applies a per-channel blend function using the standard
// formula for premultiplied colors:
//
//	out = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Sc, Dc)
//
// where B operates on unmultiplied channel values.
func separable(sr, sg, sb, sa, dr, dg, db, da byte, blendChan func(s, d byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}

	sur := byte((uint16(sr) * 255) / uint16(sa))
	sug := byte((uint16(sg) * 255) / uint16(sa))
	sub := byte((uint16(sb) * 255) / uint16(sa))
	dur := byte((uint16(dr) * 255) / uint16(da))
	dug := byte((uint16(dg) * 255) / uint16(da))
	dub := byte((uint16(db) * 255) / uint16(da))

	blendR := blendChan(sur, dur)
	blendG := blendChan(sug, dug)
	blendB := blendChan(sub, dub)

	invSa := 255 - sa
	invDa := 255 - da
	saDa := mulDiv255(sa, da)

	outA := addDiv255(sa, mulDiv255(da, invSa))
	outR := addDiv255(addDiv255(mulDiv255(dr, invSa), mulDiv255(sr, invDa)), mulDiv255(saDa, blendR))
	outG := addDiv255(addDiv255(mulDiv255(dg, invSa), mulDiv255(sg, invDa)), mulDiv255(saDa, blendG))
	outB := addDiv255(addDiv255(mulDiv255(db, invSa), mulDiv255(sb, invDa)), mulDiv255(saDa, blendB))

	return outR, outG, outB, outA
}

// screenChan: B(Cb, Cs) = 1 - (1 - Cb)*(1 - Cs).
func screenChan(s, d byte) byte {
	return 255 - mulDiv255(255-s, 255-d)
}

// overlayChan multiplies or screens depending on the backdrop:
// if Cb <= 0.5 then 2*Cb*Cs else 1 - 2*(1-Cb)*(1-Cs).
func overlayChan(s, d byte) byte {
	if d < 128 {
		return mulDiv255(2*d, s)
	}
	return 255 - mulDiv255(2*(255-d), 255-s)
}
