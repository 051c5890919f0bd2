package records

import "errors"

// ErrMalformedSchema is returned when the CSV header lacks a required column.
var ErrMalformedSchema = errors.New("CSV 格式有误: 必须包含 meeting_id 和 content 字段")
