// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package eventdata turns state machine notifications into analytics
// records.
package eventdata

// Record is one analytics sample. Durations and media positions are in
// milliseconds; Time is the epoch ms at which the record was built.
type Record struct {
	// Identity
	ImpressionID   string `json:"impressionId"`
	UserID         string `json:"userId,omitempty"`
	Key            string `json:"key,omitempty"`
	PlayerKey      string `json:"playerKey,omitempty"`
	Domain         string `json:"domain"`
	Path           string `json:"path,omitempty"`
	CdnProvider    string `json:"cdnProvider,omitempty"`
	CustomUserID   string `json:"customUserId,omitempty"`
	CustomData1    string `json:"customData1,omitempty"`
	CustomData2    string `json:"customData2,omitempty"`
	CustomData3    string `json:"customData3,omitempty"`
	CustomData4    string `json:"customData4,omitempty"`
	CustomData5    string `json:"customData5,omitempty"`
	CustomData6    string `json:"customData6,omitempty"`
	CustomData7    string `json:"customData7,omitempty"`
	ExperimentName string `json:"experimentName,omitempty"`
	VideoID        string `json:"videoId,omitempty"`
	VideoTitle     string `json:"videoTitle,omitempty"`

	// Environment
	AnalyticsVersion string `json:"analyticsVersion"`
	Platform         string `json:"platform"`
	Language         string `json:"language,omitempty"`
	UserAgent        string `json:"userAgent,omitempty"`
	ScreenWidth      int    `json:"screenWidth,omitempty"`
	ScreenHeight     int    `json:"screenHeight,omitempty"`
	PageLoadType     int    `json:"pageLoadType"`

	// Player
	Player               string   `json:"player,omitempty"`
	PlayerTech           string   `json:"playerTech,omitempty"`
	Version              string   `json:"version,omitempty"`
	VideoDuration        int64    `json:"videoDuration"`
	IsLive               bool     `json:"isLive"`
	IsCasting            bool     `json:"isCasting"`
	IsMuted              bool     `json:"isMuted"`
	StreamFormat         string   `json:"streamFormat,omitempty"`
	M3U8URL              string   `json:"m3u8Url,omitempty"`
	MPDURL               string   `json:"mpdUrl,omitempty"`
	ProgURL              string   `json:"progUrl,omitempty"`
	VideoPlaybackWidth   int      `json:"videoPlaybackWidth,omitempty"`
	VideoPlaybackHeight  int      `json:"videoPlaybackHeight,omitempty"`
	VideoWindowWidth     int      `json:"videoWindowWidth"`
	VideoWindowHeight    int      `json:"videoWindowHeight"`
	VideoBitrate         float64  `json:"videoBitrate"`
	AudioBitrate         float64  `json:"audioBitrate"`
	VideoCodec           string   `json:"videoCodec,omitempty"`
	AudioCodec           string   `json:"audioCodec,omitempty"`
	SupportedVideoCodecs []string `json:"supportedVideoCodecs,omitempty"`
	SubtitleEnabled      bool     `json:"subtitleEnabled"`
	SubtitleLanguage     string   `json:"subtitleLanguage,omitempty"`
	AudioLanguage        string   `json:"audioLanguage,omitempty"`
	DroppedFrames        int      `json:"droppedFrames"`
	DRMType              string   `json:"drmType,omitempty"`
	DRMLoadTime          *int64   `json:"drmLoadTime,omitempty"`

	// Sample
	State             string `json:"state"`
	Time              int64  `json:"time"`
	SequenceNumber    int32  `json:"sequenceNumber"`
	Duration          int64  `json:"duration"`
	Played            int64  `json:"played"`
	Paused            int64  `json:"paused"`
	Buffered          int64  `json:"buffered"`
	Seeked            int64  `json:"seeked"`
	Ad                int64  `json:"ad"`
	VideoTimeStart    int64  `json:"videoTimeStart"`
	VideoTimeEnd      int64  `json:"videoTimeEnd"`
	VideoStartupTime  int64  `json:"videoStartupTime"`
	PlayerStartupTime int64  `json:"playerStartupTime"`
	StartupTime       int64  `json:"startupTime"`
	PageLoadTime      int64  `json:"pageLoadTime"`

	// Failures
	ErrorCode              *int   `json:"errorCode,omitempty"`
	ErrorMessage           string `json:"errorMessage,omitempty"`
	ErrorData              string `json:"errorData,omitempty"`
	VideoStartFailed       bool   `json:"videoStartFailed,omitempty"`
	VideoStartFailedReason string `json:"videoStartFailedReason,omitempty"`
}
