package database

import (
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// DecodeTransactions returns the transactions held in a block's data. Blocks
// mined locally carry typed transactions. Blocks received from a peer carry
// generically decoded JSON, which is decoded strictly: unknown fields and
// non integral numbers are rejected.
func DecodeTransactions(data any) ([]Transaction, error) {
	switch v := data.(type) {
	case []Transaction:
		return v, nil
	case nil:
		return nil, fmt.Errorf("%w: no data", ErrMalformedBlockData)
	}

	var txs []Transaction
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  integralNumberHook,
		ErrorUnused: true,
		TagName:     "json",
		Result:      &txs,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedBlockData, err)
	}

	return txs, nil
}

// integralNumberHook stops mapstructure from truncating a fractional or
// negative JSON number into an integer field.
func integralNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 && from.Kind() != reflect.Float32 {
		return data, nil
	}

	f := reflect.ValueOf(data).Float()

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("number %v is not an integer", f)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f != math.Trunc(f) || math.IsInf(f, 0) || f < 0 {
			return nil, fmt.Errorf("number %v is not an unsigned integer", f)
		}
	}

	return data, nil
}
