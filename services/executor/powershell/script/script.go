// Package script 生成带参数校验的 PowerShell 脚本
package script

import (
	"fmt"
	"strings"

	pssecurity "confutils-worker/services/executor/powershell/security"
)

// Shape 脚本输出的形态，决定结果如何整理
type Shape int

const (
	// Raw 纯文本
	Raw Shape = iota
	// List JSON 数组
	List
	// Object JSON 对象
	Object
)

// Script 一段待执行的脚本
type Script struct {
	Text  string
	Shape Shape
	// SkipRateLimit 只读查询或由调用方统一限流
	SkipRateLimit bool
}

// Quote 生成 PowerShell 单引号字面量
func Quote(s string) (string, error) {
	safe, err := pssecurity.SanitizeInput(s)
	if err != nil {
		return "", err
	}
	return "'" + safe + "'", nil
}

// Builder 逐行拼装脚本
type Builder struct {
	lines []string
}

// NewBuilder 创建空 Builder
func NewBuilder() *Builder {
	return &Builder{}
}

// UTF8 控制台输出切换为 UTF-8
func (b *Builder) UTF8() *Builder {
	return b.Line("[Console]::OutputEncoding = [System.Text.Encoding]::UTF8").
		Line("$OutputEncoding = [System.Text.Encoding]::UTF8").
		Line("chcp 65001 | Out-Null")
}

// Line 追加一行
func (b *Builder) Line(line string) *Builder {
	b.lines = append(b.lines, line)
	return b
}

// Linef 追加格式化的一行
func (b *Builder) Linef(format string, args ...any) *Builder {
	return b.Line(fmt.Sprintf(format, args...))
}

// TryCatch 追加 try { body } catch { fallback }
func (b *Builder) TryCatch(body []string, fallback ...string) *Builder {
	b.Line("try {")
	for _, l := range body {
		b.Line("    " + l)
	}
	b.Line("} catch {")
	for _, l := range fallback {
		b.Line("    " + l)
	}
	return b.Line("}")
}

// String 拼成完整脚本
func (b *Builder) String() string {
	return strings.Join(b.lines, "\n")
}

// Build 生成 Script
func (b *Builder) Build(shape Shape, skipRateLimit bool) Script {
	return Script{Text: b.String(), Shape: shape, SkipRateLimit: skipRateLimit}
}
