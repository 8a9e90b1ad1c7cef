package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexID 兼容字符串与数字两种 JSON 形式的标识
type FlexID string

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) Int64() (int64, error) {
	return strconv.ParseInt(string(f), 10, 64)
}
