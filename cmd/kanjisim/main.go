// Command kanjisim queries a kanji dataset for visually and structurally
// similar characters.
//
//	kanjisim similar 未 --dataset kanji.json.zst --k 5
//	kanjisim lookup U+672A --dataset kanji.json --output yaml
//	kanjisim report --dataset kanji.json --s3-bucket datasets
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
