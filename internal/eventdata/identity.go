// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package eventdata

// Identity is the per-collector metadata copied into every record.
type Identity struct {
	Key            string
	PlayerKey      string
	Domain         string
	Path           string
	CdnProvider    string
	CustomerUserID string
	CustomData     [7]string
	ExperimentName string
	VideoID        string
	Title          string
	// IsLive is used until the player reports liveness itself.
	IsLive bool

	AnalyticsVersion string
	Platform         string
	Language         string
	UserAgent        string
}

func (id Identity) apply(r *Record) {
	r.Key = id.Key
	r.PlayerKey = id.PlayerKey
	r.Domain = id.Domain
	r.Path = id.Path
	r.CdnProvider = id.CdnProvider
	r.CustomUserID = id.CustomerUserID
	r.CustomData1 = id.CustomData[0]
	r.CustomData2 = id.CustomData[1]
	r.CustomData3 = id.CustomData[2]
	r.CustomData4 = id.CustomData[3]
	r.CustomData5 = id.CustomData[4]
	r.CustomData6 = id.CustomData[5]
	r.CustomData7 = id.CustomData[6]
	r.ExperimentName = id.ExperimentName
	r.VideoID = id.VideoID
	r.VideoTitle = id.Title
	r.IsLive = id.IsLive
	r.AnalyticsVersion = id.AnalyticsVersion
	r.Platform = id.Platform
	r.Language = NormalizeLanguage(id.Language)
	r.UserAgent = id.UserAgent
}
