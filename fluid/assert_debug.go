//go:build sphdebug

package fluid

import "fmt"

func assertPositiveDensity(j int, density float32) {
	if !(density > 0) {
		panic(fmt.Sprintf("fluid: neighbor %d has density %v in force pass", j, density))
	}
}
