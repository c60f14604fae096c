package taskbar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseHexColor 支持 #RGB 与 #RRGGBB，无法解析的分量为 0
func ParseHexColor(color string) (r, g, b uint8) {
	hex := strings.TrimLeft(strings.TrimSpace(color), "#")
	component := func(s string) uint8 {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0
		}
		return uint8(v)
	}
	switch {
	case len(hex) == 3:
		return component(strings.Repeat(hex[0:1], 2)),
			component(strings.Repeat(hex[1:2], 2)),
			component(strings.Repeat(hex[2:3], 2))
	case len(hex) >= 6:
		return component(hex[0:2]), component(hex[2:4]), component(hex[4:6])
	}
	return 0, 0, 0
}

// Alpha 不透明度百分比换算为 0-255
func Alpha(opacity int) uint8 {
	a := math.Round(float64(opacity) / 100 * 255)
	return uint8(math.Max(0, math.Min(255, a)))
}

// RGBA 生成 #RRGGBBAA
func RGBA(color string, opacity int) string {
	r, g, b := ParseHexColor(color)
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, Alpha(opacity))
}

// Accent 外观模式对应的 TranslucentTB accent
func Accent(mode string) string {
	switch mode {
	case "opaque":
		return "opaque"
	case "transparent":
		return "clear"
	case "blur":
		return "blur"
	case "acrylic":
		return "acrylic"
	}
	return "normal"
}
