package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

func ToJSON(data interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%+v", data)
	}
	var out bytes.Buffer
	err = json.Indent(&out, b, "", "    ")
	if err != nil {
		return fmt.Sprintf("%+v", data)
	}
	return out.String()
}

// Round rounds half to even, the way the ping reports this tool mirrors do.
func Round(f float64) int64 {
	return int64(math.RoundToEven(f))
}

// ProcessIdentifier is the echo identifier used when none is configured.
func ProcessIdentifier() uint16 {
	return uint16(os.Getpid() & 0xffff)
}
