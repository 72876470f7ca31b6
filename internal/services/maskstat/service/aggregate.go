package service

import (
	"math"
	"strconv"
	"strings"

	"maskstat/internal/core/bitplane"
	perr "maskstat/internal/platform/errors"
	"maskstat/internal/services/maskstat/domain"
)

// Aggregate measures every bit layer of img and merges the statistics with
// the identifier fields read from meta. Missing or unreadable header fields
// fail with ErrorCodeMissingField / ErrorCodeMalformedValue.
func Aggregate(img domain.Image, meta domain.Metadata) (domain.ImageRecord, error) {
	var rec domain.ImageRecord
	var err error

	// header is read before any pixel work
	if rec.ExpNum, err = metaInt(meta, domain.KeyExpNum); err != nil {
		return domain.ImageRecord{}, err
	}
	if rec.MJD, err = metaFloat(meta, domain.KeyMJD); err != nil {
		return domain.ImageRecord{}, err
	}
	if rec.Band, err = metaString(meta, domain.KeyBand); err != nil {
		return domain.ImageRecord{}, err
	}
	if rec.ReqNum, err = metaInt(meta, domain.KeyReqNum); err != nil {
		return domain.ImageRecord{}, err
	}
	if rec.UnitName, err = metaString(meta, domain.KeyUnitName); err != nil {
		return domain.ImageRecord{}, err
	}
	if rec.AttNum, err = metaInt(meta, domain.KeyAttNum); err != nil {
		return domain.ImageRecord{}, err
	}
	if rec.Nite, err = metaInt(meta, domain.KeyNite); err != nil {
		return domain.ImageRecord{}, err
	}
	if rec.CCDNum, err = metaInt(meta, domain.KeyCCDNum); err != nil {
		return domain.ImageRecord{}, err
	}

	stats := bitplane.Measure(img)
	rec.Bits = make([]uint64, len(stats))
	rec.NClust = make([]int, len(stats))
	rec.Area = make([]int, len(stats))
	for i, s := range stats {
		rec.Bits[i] = s.Bit
		rec.NClust[i] = s.Components
		rec.Area[i] = s.Area
	}
	return rec, nil
}

func lookup(meta domain.Metadata, key string) (any, error) {
	v, ok := meta[key]
	if !ok || v == nil {
		return nil, perr.MissingField(key)
	}
	return v, nil
}

func metaInt(meta domain.Metadata, key string) (int64, error) {
	v, err := lookup(meta, key)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) || x < -1<<63 || x >= 1<<63 {
			return 0, perr.Malformedf(key, "%s: want integer, got %v", key, x)
		}
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, perr.Malformedf(key, "%s: want integer, got %q", key, x)
		}
		return n, nil
	default:
		return 0, perr.Malformedf(key, "%s: want integer, got %T", key, v)
	}
}

func metaFloat(meta domain.Metadata, key string) (float64, error) {
	v, err := lookup(meta, key)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, perr.Malformedf(key, "%s: want float, got %q", key, x)
		}
		return f, nil
	default:
		return 0, perr.Malformedf(key, "%s: want float, got %T", key, v)
	}
}

func metaString(meta domain.Metadata, key string) (string, error) {
	v, err := lookup(meta, key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", perr.Malformedf(key, "%s: want string, got %T", key, v)
	}
	return strings.TrimSpace(s), nil
}
