//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export functions to JavaScript
	js.Global().Set("WalkerNewScanner", js.FuncOf(newScanner))
	js.Global().Set("WalkerScan", js.FuncOf(scan))
	js.Global().Set("WalkerScanBatch", js.FuncOf(scanBatch))
	js.Global().Set("WalkerCloseScanner", js.FuncOf(closeScanner))
	js.Global().Set("WalkerGetBuiltinStructures", js.FuncOf(getBuiltinStructures))

	// Keep WASM running
	<-make(chan struct{})
}
