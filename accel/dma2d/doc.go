// Package dma2d drives a DMA2D-style 2D blitter.
//
// Driver is the register-level contract of the peripheral (init, layer
// configuration, start, poll with timeout). Sim implements it in software
// for hosts and tests. Accelerator adapts any Driver to accel.Accelerator.
//
// Supported transfers:
//
//	R2M        register to memory: solid fill
//	M2M        memory to memory: byte copy, no conversion
//	M2M_PFC    memory to memory with pixel format conversion
//	M2M_BLEND  foreground blended over background into the output
//
// Input color modes are ARGB8888, RGB888, RGB565, ARGB4444, L8 (through a
// 256-entry CLUT) and A8 (color from the layer register). Output color
// modes are the first four.
package dma2d
