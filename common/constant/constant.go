package constant

import "time"

// default probe options
const (
	DEFAULT_COUNT    int           = 4
	DEFAULT_SIZE     int           = 32
	DEFAULT_TIMEOUT  time.Duration = 2 * time.Second
	DEFAULT_INTERVAL time.Duration = 700 * time.Millisecond
)

// icmp limits
const (
	ICMP_HEADER_LEN  int = 8
	IPV4_HEADER_LEN  int = 20
	MAX_PAYLOAD_SIZE int = 65507
	RECV_BUFFER_SIZE int = 65535
)

// first sequence number of a session
const (
	ICMPSeq uint16 = 1
)

// output formats
const (
	OUTPUT_NORMAL string = "normal"
	OUTPUT_JSON   string = "json"
)
