// Package arrow converts one materialised Chunk into an arrow.Record,
// the way a caller feeding vcfarray into an Arrow/Parquet pipeline would,
// exercising the pack's columnar in-memory format alongside the DuckDB sink.
package arrow

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/inodb/vcfarray/internal/vcf"
)

// BuildSchema derives an arrow.Schema from a resolved plan, one field per
// planned column (the "samples" pseudo-field, which carries no per-row
// column, is omitted).
func BuildSchema(plan *vcf.Plan) *arrow.Schema {
	var fields []arrow.Field
	for _, f := range plan.Fields {
		if f.Origin == vcf.OriginSamples {
			continue
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: arrowType(f), Nullable: false})
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(f *vcf.PlannedField) arrow.DataType {
	switch f.Type.Kind {
	case vcf.DTypeInt, vcf.DTypeGenotypeInt, vcf.DTypeAlleleCount:
		return arrow.PrimitiveTypes.Int64
	case vcf.DTypeFloat:
		return arrow.PrimitiveTypes.Float64
	case vcf.DTypeBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

// RecordFromChunk flattens one Chunk's columns (dropping any leading
// sample/item dimensions beyond the first cell, mirroring the duckdb
// sink's flattening) into a single arrow.Record over plan's field order.
func RecordFromChunk(pool memory.Allocator, plan *vcf.Plan, chunk *vcf.Chunk) (arrow.Record, error) {
	schema := BuildSchema(plan)
	builders := make([]array.Builder, len(schema.Fields()))
	names := make([]string, len(schema.Fields()))

	i := 0
	for _, f := range plan.Fields {
		if f.Origin == vcf.OriginSamples {
			continue
		}
		names[i] = f.Name
		builders[i] = newBuilder(pool, schema.Field(i).Type)
		i++
	}

	for row := 0; row < chunk.Rows(); row++ {
		for j, name := range names {
			col := chunk.Column(name)
			if col == nil {
				return nil, fmt.Errorf("missing column %q in chunk", name)
			}
			appendCell(builders[j], col, row)
		}
	}

	cols := make([]arrow.Array, len(builders))
	for j, b := range builders {
		cols[j] = b.NewArray()
		defer cols[j].Release()
	}

	return array.NewRecord(schema, cols, int64(chunk.Rows())), nil
}

func newBuilder(pool memory.Allocator, t arrow.DataType) array.Builder {
	switch t.ID() {
	case arrow.INT64:
		return array.NewInt64Builder(pool)
	case arrow.FLOAT64:
		return array.NewFloat64Builder(pool)
	case arrow.BOOL:
		return array.NewBooleanBuilder(pool)
	default:
		return array.NewStringBuilder(pool)
	}
}

func appendCell(b array.Builder, col *vcf.Column, row int) {
	idx := row * col.ItemCount()
	switch builder := b.(type) {
	case *array.Int64Builder:
		builder.Append(col.Ints[idx])
	case *array.Float64Builder:
		builder.Append(col.Floats[idx])
	case *array.BooleanBuilder:
		builder.Append(col.Bools[idx])
	case *array.StringBuilder:
		builder.Append(col.Strings[idx])
	}
}
