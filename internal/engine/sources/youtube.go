package sources

// YouTube implementation is split across three files by responsibility:
//   youtube_innertube.go  watch page / Innertube types, constants, and HTTP primitives
//   youtube_json.go       embedded JSON extraction from watch page HTML
//   youtube_transcript.go caption track listing, timedtext fetching and language selection
