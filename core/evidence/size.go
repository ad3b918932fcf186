package evidence

import (
	"math"

	"github.com/huangsam/mlscore/schema"
)

const bytesPerMB = 1024 * 1024

// sizeEvidence reads the artifact size. The structured safetensors total
// takes priority over usedStorage; repositories report their size in KiB.
func sizeEvidence(kind schema.ArtifactKind, d doc) schema.SizeEvidence {
	if total, ok := toFloat64(d.sub("safetensors")["total"]); ok {
		return schema.KnownSize(total / bytesPerMB)
	}
	if used, ok := toFloat64(d["usedStorage"]); ok {
		return schema.KnownSize(used / bytesPerMB)
	}
	if kind == schema.CodeKind {
		if kib, ok := toFloat64(d["size"]); ok {
			return schema.KnownSize(kib / 1024)
		}
	}
	return schema.SizeEvidence{}
}

func toFloat64(v any) (float64, bool) {
	if f, ok := v.(float64); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	n, ok := toInt64(v)
	return float64(n), ok
}
