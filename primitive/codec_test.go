// Copyright 2024 The dcstore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package primitive_test

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/solidcoredata/dcstore/chunkerr"
	"github.com/solidcoredata/dcstore/primitive"
	"github.com/solidcoredata/dcstore/value"
)

func roundTrip(t *testing.T, v value.Value) value.Value {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, primitive.Encode(buf, v))
	got, err := primitive.Decode(bufio.NewReader(buf))
	require.NoError(t, err)
	return got
}

func TestEncodeDecodeIdempotence(t *testing.T) {
	tcs := map[string]value.Value{
		"null":    value.NewNull(),
		"bool":    value.NewBool(true),
		"int32":   value.NewInt32(-42),
		"uint32":  value.NewUInt32(42),
		"int64":   value.NewInt64(-1 << 40),
		"uint64":  value.NewUInt64(1 << 40),
		"float32": value.NewFloat32(3.5),
		"float64": value.NewFloat64(2.71828),
		"string":  value.NewString("hello, world"),
		"document": value.NewDocument(map[string]value.Value{
			"a": value.NewInt32(1),
			"b": value.NewString("x"),
		}),
		"list": value.NewList([]value.Value{
			value.NewInt32(1), value.NewInt32(2), value.NewNull(),
		}),
		"nested": value.NewDocument(map[string]value.Value{
			"outer": value.NewDocument(map[string]value.Value{
				"inner": value.NewList([]value.Value{value.NewString("a"), value.NewString("b")}),
			}),
		}),
	}
	for name, v := range tcs {
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, v)
			require.True(t, value.Equal(v, got), "want %#v got %#v", v, got)
		})
	}
}

func TestSkipMatchesDecodeLength(t *testing.T) {
	tcs := map[string]value.Value{
		"string": value.NewString("a longer string value"),
		"document": value.NewDocument(map[string]value.Value{
			"a": value.NewInt64(9001),
			"b": value.NewList([]value.Value{value.NewBool(true), value.NewBool(false)}),
		}),
		"list": value.NewList([]value.Value{value.NewFloat64(1.5), value.NewFloat64(2.5)}),
	}
	for name, v := range tcs {
		t.Run(name, func(t *testing.T) {
			var decodeBuf, skipBuf bytes.Buffer
			require.NoError(t, primitive.Encode(&decodeBuf, v))
			require.NoError(t, primitive.Encode(&skipBuf, v))

			// Trailing marker bytes let us measure exactly how far each
			// operation advanced.
			decodeBuf.WriteByte(byte(primitive.TagNull))
			skipBuf.WriteByte(byte(primitive.TagNull))

			dr := bufio.NewReader(&decodeBuf)
			_, err := primitive.Decode(dr)
			require.NoError(t, err)
			afterDecode := dr.Buffered()

			sr := bufio.NewReader(&skipBuf)
			require.NoError(t, primitive.Skip(sr))
			afterSkip := sr.Buffered()

			require.Equal(t, afterDecode, afterSkip)
		})
	}
}

func TestDecodeUnknownTagIsCorruptInput(t *testing.T) {
	buf := bytes.NewBufferString("?")
	_, err := primitive.Decode(bufio.NewReader(buf))
	require.Error(t, err)
	require.Equal(t, chunkerr.CorruptInput, chunkerr.KindOf(err))
}

func TestDecodeShortReadIsCorruptInput(t *testing.T) {
	buf := bytes.NewBuffer([]byte{byte(primitive.TagInt32), 0x01, 0x02})
	_, err := primitive.Decode(bufio.NewReader(buf))
	require.Error(t, err)
	require.Equal(t, chunkerr.CorruptInput, chunkerr.KindOf(err))
}
