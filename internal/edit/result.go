package edit

// OutputConfig is the subset of an engine configuration reported in
// fallback events.
type OutputConfig struct {
	VideoCodec        string `json:"videoCodec,omitempty"`
	AudioCodec        string `json:"audioCodec,omitempty"`
	VideoBitrate      int    `json:"videoBitrate,omitempty"`
	FlattenSlowMotion bool   `json:"flattenSlowMotion,omitempty"`
	OperatingRate     int    `json:"operatingRate,omitempty"`
	Priority          int    `json:"priority,omitempty"`
}

// FallbackEvent reports that the engine relaxed the requested configuration.
// It is informational and never changes the outcome of a job.
type FallbackEvent struct {
	Original    OutputConfig `json:"original"`
	Substituted OutputConfig `json:"substituted"`
	Reason      string       `json:"reason,omitempty"`
}

// Result describes what the engine actually produced. Optional values are nil
// when the engine reported no value; they may differ from the request after
// a fallback.
type Result struct {
	OutputPath          string  `json:"outputPath"`
	DurationMs          int64   `json:"durationMs"`
	FileSizeBytes       int64   `json:"fileSizeBytes"`
	AverageVideoBitrate *int    `json:"averageVideoBitrate,omitempty"`
	AverageAudioBitrate *int    `json:"averageAudioBitrate,omitempty"`
	VideoCodec          *string `json:"videoCodec,omitempty"`
	AudioCodec          *string `json:"audioCodec,omitempty"`
	VideoFrameCount     int     `json:"videoFrameCount"`
	Width               *int    `json:"width,omitempty"`
	Height              *int    `json:"height,omitempty"`
	ChannelCount        *int    `json:"channelCount,omitempty"`
	SampleRate          *int    `json:"sampleRate,omitempty"`
}
