package diagnosis

import "errors"

var (
	// ErrAnalysisFailed is the only error Analyze returns; the cause is logged.
	ErrAnalysisFailed = errors.New("分析请求失败，请检查图片链接。")

	ErrNotImage           = errors.New("content is not an image")
	ErrImageTooLarge      = errors.New("image exceeds size limit")
	ErrUnsupportedScheme  = errors.New("unsupported image reference scheme")
	ErrSourceNotAvailable = errors.New("image source not configured")
)

// EmptyReportText replaces an empty model response.
const EmptyReportText = "分析生成失败"
