package export

import (
	"encoding/json"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// appendValueToBuilder appends a typed value from an Arrow array to a builder.
func appendValueToBuilder(builder array.Builder, col arrow.Array, pos int) {
	if col.IsNull(pos) {
		builder.AppendNull()
		return
	}

	switch col.DataType().ID() {
	case arrow.STRING:
		builder.(*array.StringBuilder).Append(col.(*array.String).Value(pos))
	case arrow.BINARY:
		builder.(*array.BinaryBuilder).Append(col.(*array.Binary).Value(pos))
	case arrow.BOOL:
		builder.(*array.BooleanBuilder).Append(col.(*array.Boolean).Value(pos))
	case arrow.INT8:
		builder.(*array.Int8Builder).Append(col.(*array.Int8).Value(pos))
	case arrow.INT16:
		builder.(*array.Int16Builder).Append(col.(*array.Int16).Value(pos))
	case arrow.INT32:
		builder.(*array.Int32Builder).Append(col.(*array.Int32).Value(pos))
	case arrow.INT64:
		builder.(*array.Int64Builder).Append(col.(*array.Int64).Value(pos))
	case arrow.UINT8:
		builder.(*array.Uint8Builder).Append(col.(*array.Uint8).Value(pos))
	case arrow.UINT16:
		builder.(*array.Uint16Builder).Append(col.(*array.Uint16).Value(pos))
	case arrow.UINT32:
		builder.(*array.Uint32Builder).Append(col.(*array.Uint32).Value(pos))
	case arrow.UINT64:
		builder.(*array.Uint64Builder).Append(col.(*array.Uint64).Value(pos))
	case arrow.FLOAT16:
		builder.(*array.Float16Builder).Append(col.(*array.Float16).Value(pos))
	case arrow.FLOAT32:
		builder.(*array.Float32Builder).Append(col.(*array.Float32).Value(pos))
	case arrow.FLOAT64:
		builder.(*array.Float64Builder).Append(col.(*array.Float64).Value(pos))
	case arrow.DATE32:
		builder.(*array.Date32Builder).Append(col.(*array.Date32).Value(pos))
	case arrow.DATE64:
		builder.(*array.Date64Builder).Append(col.(*array.Date64).Value(pos))
	case arrow.TIMESTAMP:
		builder.(*array.TimestampBuilder).Append(col.(*array.Timestamp).Value(pos))
	case arrow.DECIMAL128:
		builder.(*array.Decimal128Builder).Append(col.(*array.Decimal128).Value(pos))
	case arrow.STRUCT:
		b := builder.(*array.StructBuilder)
		s := col.(*array.Struct)
		b.Append(true)
		for i := 0; i < s.NumField(); i++ {
			appendValueToBuilder(b.FieldBuilder(i), s.Field(i), pos)
		}
	case arrow.LIST:
		b := builder.(*array.ListBuilder)
		l := col.(*array.List)
		b.Append(true)
		valueBuilder := b.ValueBuilder()
		offsets := l.Offsets()
		start := int(offsets[pos])
		end := int(offsets[pos+1])
		values := l.ListValues()
		for i := start; i < end; i++ {
			appendValueToBuilder(valueBuilder, values, i)
		}
	default:
		builder.AppendNull()
	}
}

// formatValue converts an Arrow column value at a specific position to a string.
func formatValue(col arrow.Array, pos int) string {
	if col.IsNull(pos) {
		return ""
	}

	switch col.DataType().ID() {
	case arrow.STRUCT:
		b, _ := col.(*array.Struct).MarshalJSON()
		return string(b)

	case arrow.LIST:
		sliced := array.NewSlice(col, int64(pos), int64(pos+1))
		s := fmt.Sprintf("%v", sliced)
		sliced.Release()
		return s

	case arrow.STRING:
		return col.(*array.String).Value(pos)

	case arrow.BINARY:
		return string(col.(*array.Binary).Value(pos))

	case arrow.BOOL:
		return fmt.Sprintf("%v", col.(*array.Boolean).Value(pos))

	case arrow.DATE32:
		return col.(*array.Date32).Value(pos).ToTime().Format("2006-01-02")

	case arrow.DATE64:
		return col.(*array.Date64).Value(pos).ToTime().Format("2006-01-02")

	case arrow.DECIMAL128:
		return col.(*array.Decimal128).Value(pos).BigInt().String()

	case arrow.INT8:
		return fmt.Sprintf("%d", col.(*array.Int8).Value(pos))

	case arrow.INT16:
		return fmt.Sprintf("%d", col.(*array.Int16).Value(pos))

	case arrow.INT32:
		return fmt.Sprintf("%d", col.(*array.Int32).Value(pos))

	case arrow.INT64:
		return fmt.Sprintf("%d", col.(*array.Int64).Value(pos))

	case arrow.UINT8:
		return fmt.Sprintf("%d", col.(*array.Uint8).Value(pos))

	case arrow.UINT16:
		return fmt.Sprintf("%d", col.(*array.Uint16).Value(pos))

	case arrow.UINT32:
		return fmt.Sprintf("%d", col.(*array.Uint32).Value(pos))

	case arrow.UINT64:
		return fmt.Sprintf("%d", col.(*array.Uint64).Value(pos))

	case arrow.FLOAT16:
		return col.(*array.Float16).Value(pos).String()

	case arrow.FLOAT32:
		return fmt.Sprintf("%.6f", col.(*array.Float32).Value(pos))

	case arrow.FLOAT64:
		return fmt.Sprintf("%.6f", col.(*array.Float64).Value(pos))

	case arrow.TIMESTAMP:
		return col.(*array.Timestamp).Value(pos).ToTime(arrow.Nanosecond).Format("2006-01-02 15:04:05.999999999")

	case arrow.INTERVAL_MONTHS:
		return fmt.Sprintf("%v", col.(*array.MonthInterval).Value(pos))

	case arrow.INTERVAL_DAY_TIME:
		return fmt.Sprintf("%v", col.(*array.DayTimeInterval).Value(pos))

	default:
		return col.ValueStr(pos)
	}
}

// getTypedValue returns the typed value for JSON export (preserves types).
func getTypedValue(col arrow.Array, pos int) interface{} {
	if col.IsNull(pos) {
		return nil
	}

	switch col.DataType().ID() {
	case arrow.STRING:
		return col.(*array.String).Value(pos)

	case arrow.BINARY:
		return string(col.(*array.Binary).Value(pos))

	case arrow.BOOL:
		return col.(*array.Boolean).Value(pos)

	case arrow.INT8:
		return col.(*array.Int8).Value(pos)

	case arrow.INT16:
		return col.(*array.Int16).Value(pos)

	case arrow.INT32:
		return col.(*array.Int32).Value(pos)

	case arrow.INT64:
		return col.(*array.Int64).Value(pos)

	case arrow.UINT8:
		return col.(*array.Uint8).Value(pos)

	case arrow.UINT16:
		return col.(*array.Uint16).Value(pos)

	case arrow.UINT32:
		return col.(*array.Uint32).Value(pos)

	case arrow.UINT64:
		return col.(*array.Uint64).Value(pos)

	case arrow.FLOAT16:
		return col.(*array.Float16).Value(pos).Float32()

	case arrow.FLOAT32:
		return col.(*array.Float32).Value(pos)

	case arrow.FLOAT64:
		return col.(*array.Float64).Value(pos)

	case arrow.DATE32:
		return col.(*array.Date32).Value(pos).ToTime().Format("2006-01-02")

	case arrow.DATE64:
		return col.(*array.Date64).Value(pos).ToTime().Format("2006-01-02")

	case arrow.TIMESTAMP:
		return col.(*array.Timestamp).Value(pos).ToTime(arrow.Nanosecond).Format("2006-01-02T15:04:05.999999999Z")

	case arrow.STRUCT:
		b, _ := col.(*array.Struct).MarshalJSON()
		var result interface{}
		json.Unmarshal(b, &result)
		return result

	case arrow.DECIMAL128:
		return col.(*array.Decimal128).Value(pos).BigInt().String()

	default:
		return formatValue(col, pos)
	}
}
