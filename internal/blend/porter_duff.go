package blend

// Over composites a straight-alpha foreground over a straight-alpha
// background the way the DMA2D blender does it:
//
//	αMult = αFG·αBG/255
//	αOUT  = αFG + αBG − αMult
//	COUT  = (CFG·αFG + CBG·αBG − CBG·αMult) / αOUT
//
// Results are truncated, matching the hardware output stage.
func Over(fr, fg, fb, fa, br, bg, bb, ba byte) (r, g, b, a byte) {
	switch fa {
	case 255:
		return fr, fg, fb, 255
	case 0:
		return br, bg, bb, ba
	}
	aMult := uint32(MulDiv255(fa, ba))
	aOut := uint32(fa) + uint32(ba) - aMult
	if aOut == 0 {
		return 0, 0, 0, 0
	}
	mix := func(cf, cb byte) byte {
		v := (uint32(cf)*uint32(fa) + uint32(cb)*(uint32(ba)-aMult)) / aOut
		if v > 255 {
			v = 255
		}
		return byte(v)
	}
	return mix(fr, br), mix(fg, bg), mix(fb, bb), byte(aOut)
}

// SourceOver composites premultiplied source over premultiplied destination.
// Formula: S + D * (1 - Sa)
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	invSa := 255 - sa
	return addClamp(sr, MulDiv255(dr, invSa)),
		addClamp(sg, MulDiv255(dg, invSa)),
		addClamp(sb, MulDiv255(db, invSa)),
		addClamp(sa, MulDiv255(da, invSa))
}

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}
