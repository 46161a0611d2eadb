package service

import (
	"fmt"
	"regexp"
	"strings"
)

// closingBlockTag 命中已包含结构化块标签的内容，直接透传
var closingBlockTag = regexp.MustCompile(`(?i)</(p|ul|ol|li|div)>`)

// numberedMarker 命中“1.”或“1)”形式的有序列表行
var numberedMarker = regexp.MustCompile(`^\s*\d+[.)]\s*`)

// bulletMarkers 是无序列表行允许的前导符号集合
var bulletMarkers = []string{"-", "*", "+", "•", "◦", "▪", "·"}

type blockKind int

const (
	kindNone blockKind = iota
	kindBullet
	kindNumbered
)

// NormalizeContent 将自由粘贴的文本整理为块级标记串。
// 已包含闭合块标签的输入原样返回，因此对自身输出幂等。
func NormalizeContent(input string) string {
	if input == "" {
		return ""
	}
	if closingBlockTag.MatchString(input) {
		return input
	}

	normalized := strings.ReplaceAll(input, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	var blocks []string
	var paragraph []string
	var list []string
	listKind := kindNone

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		blocks = append(blocks, "<p>"+strings.Join(paragraph, "<br>")+"</p>")
		paragraph = nil
	}

	flushList := func() {
		if len(list) == 0 {
			listKind = kindNone
			return
		}
		tag := "ul"
		if listKind == kindNumbered {
			tag = "ol"
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "<%s>", tag)
		for _, item := range list {
			fmt.Fprintf(&sb, "<li>%s</li>", item)
		}
		fmt.Fprintf(&sb, "</%s>", tag)
		blocks = append(blocks, sb.String())
		list = nil
		listKind = kindNone
	}

	for _, line := range strings.Split(normalized, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			// 段落内部的纯空白行保留为段内空行，真正的空行作为块分隔
			if line != "" && len(paragraph) > 0 {
				paragraph = append(paragraph, "")
				continue
			}
			flushList()
			flushParagraph()

		case isBulletLine(trimmed):
			flushParagraph()
			if listKind == kindNumbered {
				flushList()
			}
			listKind = kindBullet
			list = append(list, stripBulletMarker(trimmed))

		case numberedMarker.MatchString(trimmed):
			flushParagraph()
			if listKind == kindBullet {
				flushList()
			}
			listKind = kindNumbered
			list = append(list, numberedMarker.ReplaceAllString(trimmed, ""))

		default:
			flushList()
			paragraph = append(paragraph, trimmed)
		}
	}

	flushList()
	flushParagraph()

	return strings.Join(blocks, "\n\n")
}

func isBulletLine(trimmed string) bool {
	for _, marker := range bulletMarkers {
		if trimmed == marker {
			return true
		}
		if strings.HasPrefix(trimmed, marker+" ") || strings.HasPrefix(trimmed, marker+"\t") {
			return true
		}
	}
	return false
}

func stripBulletMarker(trimmed string) string {
	for _, marker := range bulletMarkers {
		if trimmed == marker {
			return ""
		}
		if strings.HasPrefix(trimmed, marker+" ") || strings.HasPrefix(trimmed, marker+"\t") {
			return strings.TrimLeft(strings.TrimPrefix(trimmed, marker), " \t")
		}
	}
	return trimmed
}
