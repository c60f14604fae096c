package security

import (
	"strings"
	"unicode/utf8"

	"confutils-worker/services/errs"
)

// MaxInputLength 单次输入最大字符数
const MaxInputLength = 20000

// PowerShell 把弯引号也当作引号界定符
var (
	singleQuotes = []string{"'", "\u2018", "\u2019", "\u201A", "\u201B"}
	doubleQuotes = []string{`"`, "\u201C", "\u201D", "\u201E"}

	quoteDoubler = strings.NewReplacer(
		"'", "''",
		"\u2018", "\u2018\u2018",
		"\u2019", "\u2019\u2019",
		"\u201A", "\u201A\u201A",
		"\u201B", "\u201B\u201B",
	)
)

// SanitizeInput 校验输入并将所有单引号字符加倍，结果可直接嵌入 PowerShell 单引号字符串
func SanitizeInput(text string) (string, error) {
	if err := CheckScript(text, MaxInputLength); err != nil {
		return "", err
	}
	return quoteDoubler.Replace(text), nil
}

// CheckScript 只做校验不改写文本
func CheckScript(text string, maxLen int) error {
	if maxLen <= 0 {
		maxLen = MaxInputLength
	}
	if utf8.RuneCountInString(text) > maxLen {
		return errs.Invalid("input too long (max %d characters)", maxLen)
	}
	if strings.ContainsRune(text, '`') {
		return errs.Security("backtick escapes are not allowed")
	}
	if strings.ContainsAny(text, "<>") {
		return errs.Security("redirection is not allowed")
	}
	if sep := findSeparator(text); sep != "" {
		return errs.Security("command chaining with %q is not allowed", sep)
	}
	return nil
}

// findSeparator 返回第一个位于引号和 $( ) 之外的 &&、|| 或 &
//
// 引号或 $( 未闭合且文本中出现过分隔符时同样视为违规。
func findSeparator(text string) string {
	var (
		inSingle, inDouble bool
		// true 表示由 $( 打开
		parens  []bool
		subexpr int
		hidden  string
	)

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch {
		case inSingle:
			if n := quoteAt(text, i, singleQuotes); n > 0 {
				inSingle = false
				if subexpr == 0 {
					hidden = ""
				}
				i += n - 1
			} else if hidden == "" {
				hidden = separatorAt(text, i)
			}
			continue
		case inDouble:
			if n := quoteAt(text, i, doubleQuotes); n > 0 {
				inDouble = false
				if subexpr == 0 {
					hidden = ""
				}
				i += n - 1
			} else if hidden == "" {
				hidden = separatorAt(text, i)
			}
			continue
		}

		if n := quoteAt(text, i, singleQuotes); n > 0 {
			inSingle = true
			i += n - 1
			continue
		}
		if n := quoteAt(text, i, doubleQuotes); n > 0 {
			inDouble = true
			i += n - 1
			continue
		}

		switch c {
		case '$':
			if i+1 < len(text) && text[i+1] == '(' {
				parens = append(parens, true)
				subexpr++
				i++
			}
		case '(':
			parens = append(parens, false)
		case ')':
			if n := len(parens); n > 0 {
				if parens[n-1] {
					subexpr--
					if subexpr == 0 {
						hidden = ""
					}
				}
				parens = parens[:n-1]
			}
		default:
			sep := separatorAt(text, i)
			if sep == "" {
				continue
			}
			if subexpr == 0 {
				return sep
			}
			if hidden == "" {
				hidden = sep
			}
			i += len(sep) - 1
		}
	}

	if (inSingle || inDouble || subexpr > 0) && hidden != "" {
		return hidden
	}
	return ""
}

func separatorAt(text string, i int) string {
	switch text[i] {
	case '&':
		if i+1 < len(text) && text[i+1] == '&' {
			return "&&"
		}
		return "&"
	case '|':
		if i+1 < len(text) && text[i+1] == '|' {
			return "||"
		}
	}
	return ""
}

// quoteAt 返回 text[i:] 开头引号字符的字节长度，不是引号时返回 0
func quoteAt(text string, i int, quotes []string) int {
	for _, q := range quotes {
		if strings.HasPrefix(text[i:], q) {
			return len(q)
		}
	}
	return 0
}
