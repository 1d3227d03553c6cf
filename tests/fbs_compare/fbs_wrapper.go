// Package fbscompare compares flatwire with the reference FlatBuffers Go
// runtime on the same metric-set layout:
//
//	table MetricSet { metrics: [Metric]; }
//	table Metric    { id: ulong; timestamp: [long]; value: [double]; }
package fbscompare

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/arloliu/flatwire/builder"
	"github.com/arloliu/flatwire/errs"
	"github.com/arloliu/flatwire/reader"
)

// Field ids of Metric.
const (
	fieldID        = 0
	fieldTimestamp = 1
	fieldValue     = 2
)

// Field id of MetricSet.
const fieldMetrics = 0

// MetricData is a single metric with its timestamps and values.
type MetricData struct {
	ID         uint64
	Timestamps []int64
	Values     []float64
}

// Summary aggregates a metric set so that both runtimes can be checked
// against each other.
type Summary struct {
	Metrics int
	Points  int
	IDSum   uint64
	TsSum   int64
	ValSum  float64
}

func (s *Summary) add(id uint64, ts []int64, vals []float64) {
	s.Metrics++
	s.Points += len(vals)
	s.IDSum += id
	for _, v := range ts {
		s.TsSum += v
	}
	for _, v := range vals {
		s.ValSum += v
	}
}

// EncodeFBS builds a metric set with the FlatBuffers runtime.
func EncodeFBS(b *flatbuffers.Builder, metrics []MetricData) []byte {
	b.Reset()

	offsets := make([]flatbuffers.UOffsetT, len(metrics))
	for i, m := range metrics {
		b.StartVector(8, len(m.Timestamps), 8)
		for j := len(m.Timestamps) - 1; j >= 0; j-- {
			b.PrependInt64(m.Timestamps[j])
		}
		ts := b.EndVector(len(m.Timestamps))

		b.StartVector(8, len(m.Values), 8)
		for j := len(m.Values) - 1; j >= 0; j-- {
			b.PrependFloat64(m.Values[j])
		}
		vals := b.EndVector(len(m.Values))

		b.StartObject(3)
		b.PrependUint64Slot(fieldID, m.ID, 0)
		b.PrependUOffsetTSlot(fieldTimestamp, ts, 0)
		b.PrependUOffsetTSlot(fieldValue, vals, 0)
		offsets[i] = b.EndObject()
	}

	b.StartVector(4, len(offsets), 4)
	for i := len(offsets) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offsets[i])
	}
	vec := b.EndVector(len(offsets))

	b.StartObject(1)
	b.PrependUOffsetTSlot(fieldMetrics, vec, 0)
	b.Finish(b.EndObject())

	return b.FinishedBytes()
}

// EncodeFlatwire builds the same metric set with flatwire.
func EncodeFlatwire(b *builder.Builder, metrics []MetricData) ([]byte, error) {
	b.Reset()

	offsets := make([]builder.TableOffset, len(metrics))
	for i, m := range metrics {
		ts, err := builder.CreateVector(b, m.Timestamps)
		if err != nil {
			return nil, err
		}
		vals, err := builder.CreateVector(b, m.Values)
		if err != nil {
			return nil, err
		}

		if err := b.StartTable(); err != nil {
			return nil, err
		}
		if err := builder.AddField(b, fieldID, m.ID, 0); err != nil {
			return nil, err
		}
		if err := b.AddFieldOffset(fieldTimestamp, ts); err != nil {
			return nil, err
		}
		if err := b.AddFieldOffset(fieldValue, vals); err != nil {
			return nil, err
		}
		if offsets[i], err = b.EndTable(); err != nil {
			return nil, err
		}
	}

	vec, err := builder.CreateOffsetVector(b, offsets)
	if err != nil {
		return nil, err
	}

	if err := b.StartTable(); err != nil {
		return nil, err
	}
	if err := b.AddFieldOffset(fieldMetrics, vec); err != nil {
		return nil, err
	}
	root, err := b.EndTable()
	if err != nil {
		return nil, err
	}
	if err := b.Finish(root); err != nil {
		return nil, err
	}

	return b.FinishedBytes()
}

func fbsSlot(id int) flatbuffers.VOffsetT {
	return flatbuffers.VOffsetT(4 + 2*id) //nolint: gosec
}

// SummarizeFBS reads a metric set with the FlatBuffers runtime.
func SummarizeFBS(buf []byte) Summary {
	var s Summary

	root := flatbuffers.Table{Bytes: buf, Pos: flatbuffers.GetUOffsetT(buf)}
	o := flatbuffers.UOffsetT(root.Offset(fbsSlot(fieldMetrics)))
	if o == 0 {
		return s
	}

	vec := root.Vector(o)
	n := root.VectorLen(o)
	for i := range n {
		metric := flatbuffers.Table{Bytes: buf, Pos: root.Indirect(vec + flatbuffers.UOffsetT(i*4))} //nolint: gosec

		var id uint64
		if o := flatbuffers.UOffsetT(metric.Offset(fbsSlot(fieldID))); o != 0 {
			id = metric.GetUint64(metric.Pos + o)
		}

		var ts []int64
		if o := flatbuffers.UOffsetT(metric.Offset(fbsSlot(fieldTimestamp))); o != 0 {
			start := metric.Vector(o)
			ts = make([]int64, metric.VectorLen(o))
			for j := range ts {
				ts[j] = metric.GetInt64(start + flatbuffers.UOffsetT(j*8)) //nolint: gosec
			}
		}

		var vals []float64
		if o := flatbuffers.UOffsetT(metric.Offset(fbsSlot(fieldValue))); o != 0 {
			start := metric.Vector(o)
			vals = make([]float64, metric.VectorLen(o))
			for j := range vals {
				vals[j] = metric.GetFloat64(start + flatbuffers.UOffsetT(j*8)) //nolint: gosec
			}
		}

		s.add(id, ts, vals)
	}

	return s
}

// SummarizeFlatwire reads a metric set with flatwire, viewing numeric
// vectors in place when the host and alignment allow it.
func SummarizeFlatwire(buf []byte) (Summary, error) {
	var s Summary

	r, err := reader.New(buf)
	if err != nil {
		return s, err
	}
	root, err := r.Root()
	if err != nil {
		return s, err
	}

	metrics, err := root.Vector(fieldMetrics)
	if err != nil {
		return s, err
	}

	for i := range metrics.Len() {
		metric, err := metrics.Table(i)
		if err != nil {
			return s, err
		}

		id, err := reader.GetField[uint64](metric, fieldID, 0)
		if err != nil {
			return s, err
		}
		ts, err := numericField[int64](metric, fieldTimestamp)
		if err != nil {
			return s, err
		}
		vals, err := numericField[float64](metric, fieldValue)
		if err != nil {
			return s, err
		}

		s.add(id, ts, vals)
	}

	return s, nil
}

func numericField[T int64 | float64](tbl reader.Table, id int) ([]T, error) {
	vec, err := tbl.Vector(id)
	if errors.Is(err, errs.ErrFieldAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("field %d: %w", id, err)
	}

	view, err := reader.View[T](vec)
	if errors.Is(err, errs.ErrViewUnavailable) {
		return reader.Materialize[T](vec)
	}

	return view, err
}
