package driver

import (
	"encoding/json"
	"fmt"

	"grammarref/internal/diag"
	"grammarref/internal/observ"
	"grammarref/internal/source"
)

type timingPayload struct {
	Kind string `json:"kind"`
	observ.Report
}

func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "pipeline"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{},
		fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS))
	bag.Add(d.WithNote(source.Span{}, string(data)))
}
