// Package anim loads ASCII animation documents.
//
// A document is a JSON object:
//
//	{
//	  "frames": [
//	    {"duration": 80, "content": ["  o  ", " /|\\ "]},
//	    {"contentString": "  o\n /|\\\n", "colors": {"foreground": "{\"2,0\":\"#ff0000\"}"}}
//	  ],
//	  "metadata": {"name": "wave"},
//	  "canvas": {"width": 40}
//	}
//
// Frame text may be authored either as a line array or as one joined string.
// Both forms are normalized into [Frame.Lines] at load time. The foreground
// color map is itself a JSON-encoded string keyed by "col,row".
//
// Unknown fields are ignored. Malformed color entries and non-numeric
// durations are dropped rather than reported.
package anim
