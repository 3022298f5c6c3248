package lark

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Participant table fields.
const (
	FieldRecordID    = "记录 ID"
	FieldName        = "姓名"
	FieldPhone       = "电话"
	FieldSchool      = "学校"
	FieldTeamName    = "队伍名"
	FieldTeamOrdinal = "队伍编号"
	FieldCheckedInAt = "签到时间"
)

// Team table fields.
const (
	FieldAssetsIssuedAt = "物资领取时间"
)

// Bitable returns cell values in several shapes depending on the column type:
//
//	text:    [{"type":"text","text":"张三"}]
//	phone:   "13800000000"
//	number:  7
//	lookup:  {"type":1,"value":[{"type":"text","text":"T01"}]}
//	date:    1728950400000 (unix ms)

// textValue flattens a cell to its display text. Missing cells are "".
func textValue(fields map[string]any, name string) string {
	return flattenText(fields[name])
}

func flattenText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		var b strings.Builder
		for _, item := range val {
			b.WriteString(flattenText(item))
		}
		return strings.TrimSpace(b.String())
	case map[string]any:
		if text, ok := val["text"]; ok {
			return flattenText(text)
		}
		if inner, ok := val["value"]; ok {
			return flattenText(inner)
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// intValue reads a numeric cell. ok is false when the cell is empty.
func intValue(fields map[string]any, name string) (int, bool, error) {
	return toInt(fields[name])
}

func toInt(v any) (int, bool, error) {
	switch val := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return int(val), true, nil
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return 0, false, nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, false, fmt.Errorf("not a number: %q", val)
		}
		return n, true, nil
	case []any:
		if len(val) == 0 {
			return 0, false, nil
		}
		return toInt(val[0])
	case map[string]any:
		if inner, ok := val["value"]; ok {
			return toInt(inner)
		}
		if text, ok := val["text"]; ok {
			return toInt(text)
		}
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("unexpected number cell %T", v)
	}
}

// timeValue reads a date cell stored as unix milliseconds.
func timeValue(fields map[string]any, name string) (*time.Time, error) {
	ms, ok, err := toInt(fields[name])
	if err != nil || !ok || ms == 0 {
		return nil, err
	}
	t := time.UnixMilli(int64(ms))
	return &t, nil
}
