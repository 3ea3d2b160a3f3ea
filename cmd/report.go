package cmd

import (
	"fmt"
	"io"
	"net/netip"

	"github.com/LanXuage/gping/common"
	"github.com/LanXuage/gping/common/constant"
	"github.com/LanXuage/gping/ping"
)

type probe struct {
	Seq      uint16 `json:"seq"`
	TimeMs   int64  `json:"time_ms"`
	TTL      uint8  `json:"ttl"`
	TimedOut bool   `json:"timed_out"`
}

type report struct {
	Target   string       `json:"target"`
	IP       string       `json:"ip"`
	Location string       `json:"location,omitempty"`
	Size     int          `json:"size"`
	Probes   []probe      `json:"probes"`
	Summary  ping.Summary `json:"summary"`
}

type reporter struct {
	w      io.Writer
	output string
	report report
}

func newReporter(w io.Writer, output, target string, dst netip.Addr, location string) *reporter {
	return &reporter{
		w:      w,
		output: output,
		report: report{
			Target:   target,
			IP:       dst.String(),
			Location: location,
			Probes:   []probe{},
		},
	}
}

func (r *reporter) Start(size int) {
	r.report.Size = size
	if r.output == constant.OUTPUT_JSON {
		return
	}
	fmt.Fprintf(r.w, "Pinging %s [%s]", r.report.Target, r.report.IP)
	if r.report.Location != "" {
		fmt.Fprintf(r.w, " (%s)", r.report.Location)
	}
	fmt.Fprintf(r.w, " with %d bytes of data:\n", size)
}

func (r *reporter) Probe(result ping.ProbeResult) {
	p := probe{Seq: result.Sequence, TimedOut: result.TimedOut}
	if !result.TimedOut {
		p.TimeMs, p.TTL = result.Millis(), result.TTL
	}
	r.report.Probes = append(r.report.Probes, p)
	if r.output == constant.OUTPUT_JSON {
		return
	}
	if result.TimedOut {
		fmt.Fprintln(r.w, "Request timed out.")
		return
	}
	fmt.Fprintf(r.w, "Reply from %s: bytes=%d time=%dms TTL=%d\n", r.report.IP, r.report.Size, result.Millis(), result.TTL)
}

func (r *reporter) Finish(summary ping.Summary) {
	r.report.Summary = summary
	if r.output == constant.OUTPUT_JSON {
		fmt.Fprintln(r.w, common.ToJSON(r.report))
		return
	}
	fmt.Fprintf(r.w, "\nPing statistics for %s:\n", r.report.IP)
	fmt.Fprintf(r.w, "    Packets: Sent = %d, Received = %d, Lost = %d (%d%% loss),\n",
		summary.Sent, summary.Received, summary.Lost, summary.LossPercent)
	if summary.MinMs == nil {
		return
	}
	fmt.Fprintln(r.w, "Approximate round trip times in milli-seconds:")
	fmt.Fprintf(r.w, "    Minimum = %dms, Maximum = %dms, Average = %dms\n", *summary.MinMs, *summary.MaxMs, *summary.AvgMs)
}
