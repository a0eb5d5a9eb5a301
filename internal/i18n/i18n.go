// Package i18n renders the user-facing banner and run summary in English or
// Chinese. Structured logs are never localized.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The key doubles as the English format string.
const (
	MsgStart          = "MP4 Video Processor starting..."
	MsgWorkingDir     = "Working directory: %s"
	MsgForceMode      = "Force compression mode: all video files will be compressed"
	MsgNoFiles        = "No files to process in %s"
	MsgComplete       = "Processing complete! Total processed %d files"
	MsgFailedFiles    = "%d files could not be processed and were left in place"
	MsgProgramError   = "Program execution error"
	MsgWatching       = "Watching %s for new files (Ctrl+C to stop)"
	MsgLabelDone      = "Moved to Done"
	MsgLabelCompress  = "Compressed"
	MsgLabelErrored   = "Moved to Error"
	MsgLabelFailed    = "Failed"
	MsgLabelSaved     = "Space saved"
	MsgLabelElapsed   = "Elapsed"
	MsgLabelMetric    = "Metric"
	MsgLabelValue     = "Value"
	MsgLabelProcessed = "Processed"
)

var chinese = map[string]string{
	MsgStart:          "MP4文件处理工具启动...",
	MsgWorkingDir:     "工作目录: %s",
	MsgForceMode:      "强制压缩模式：将压缩所有视频文件",
	MsgNoFiles:        "%s 下没有需要处理的文件",
	MsgComplete:       "处理完成！总共处理了 %d 个文件",
	MsgFailedFiles:    "%d 个文件处理失败，已保留在原位置",
	MsgProgramError:   "程序执行出错",
	MsgWatching:       "正在监视 %s 中的新文件（按 Ctrl+C 停止）",
	MsgLabelDone:      "移动到Done",
	MsgLabelCompress:  "已压缩",
	MsgLabelErrored:   "移动到Error",
	MsgLabelFailed:    "失败",
	MsgLabelSaved:     "节省空间",
	MsgLabelElapsed:   "耗时",
	MsgLabelMetric:    "项目",
	MsgLabelValue:     "数值",
	MsgLabelProcessed: "已处理",
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, zh := range chinese {
		_ = b.SetString(language.English, key, key)
		_ = b.SetString(language.Chinese, key, zh)
	}
	return b
}

// Detect picks the display language from LANG, LC_ALL, then LC_MESSAGES:
// the first non-empty value wins, and any value mentioning zh or CN selects
// Chinese.
func Detect(getenv func(string) string) language.Tag {
	var locale string
	for _, key := range []string{"LANG", "LC_ALL", "LC_MESSAGES"} {
		if v := getenv(key); v != "" {
			locale = v
			break
		}
	}
	if strings.Contains(locale, "zh") || strings.Contains(locale, "CN") {
		return language.Chinese
	}
	return language.English
}

// Printer formats localized messages.
type Printer struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a Printer for tag.
func New(tag language.Tag) *Printer {
	return &Printer{tag: tag, p: message.NewPrinter(tag, message.Catalog(messages))}
}

// Tag returns the printer language.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// Sprintf formats key with args in the printer language.
func (p *Printer) Sprintf(key string, args ...any) string {
	return p.p.Sprintf(key, args...)
}
