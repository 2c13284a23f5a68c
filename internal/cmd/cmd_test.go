package cmd

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRoot()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestGen(t *testing.T) {
	t.Run("十进制", func(t *testing.T) {
		out, err := execute(t, "gen", "-n", "5", "--identifier", "2000", "--format", "dec")
		require.NoError(t, err)
		ls := lines(out)
		require.Len(t, ls, 5)

		var prev int64
		for _, l := range ls {
			id, err := snowflake.ParseID(l)
			require.NoError(t, err)
			assert.Equal(t, uint64(976), id.Identifier())
			assert.Greater(t, id.Int64(), prev)
			prev = id.Int64()
		}
	})

	t.Run("二进制对照", func(t *testing.T) {
		out, err := execute(t, "gen", "-n", "2", "--identifier", "11")
		require.NoError(t, err)
		for _, l := range lines(out) {
			bin, dec, ok := strings.Cut(l, " -> ")
			require.True(t, ok, l)
			b, err := strconv.ParseInt(bin, 2, 64)
			require.NoError(t, err)
			d, err := strconv.ParseInt(dec, 10, 64)
			require.NoError(t, err)
			assert.Equal(t, d, b)
		}
	})

	t.Run("任意64位无符号标识", func(t *testing.T) {
		tests := []struct {
			name       string
			identifier string
			expected   uint64
		}{
			{"最大值截断", "18446744073709551615", 1023},
			{"超出int64范围", "9223372036854775808", 0},
			{"显式零值", "0", 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				out, err := execute(t, "gen", "-n", "1", "--identifier", tt.identifier, "-f", "dec")
				require.NoError(t, err)
				id, err := snowflake.ParseID(strings.TrimSpace(out))
				require.NoError(t, err)
				assert.Equal(t, tt.expected, id.Identifier())
			})
		}
	})

	t.Run("负数标识被拒绝", func(t *testing.T) {
		_, err := execute(t, "gen", "-n", "1", "--identifier", "-1")
		assert.Error(t, err)
	})

	t.Run("十六进制与默认生成器", func(t *testing.T) {
		out, err := execute(t, "gen", "-n", "1", "-f", "hex")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "0x"))
	})

	t.Run("数量越界", func(t *testing.T) {
		_, err := execute(t, "gen", "-n", "0")
		assert.Error(t, err)
	})
}

func TestParse(t *testing.T) {
	now := uint64(time.Now().UnixMilli())
	a := snowflake.ID(snowflake.Pack(0, now, 7, 1))
	b := snowflake.ID(snowflake.Pack(0, now, 8, 2))

	out, err := execute(t, "parse", a.String(), b.Hex())
	require.NoError(t, err)

	var infos []core.IDInfo
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, a.Int64(), infos[0].ID)
	assert.Equal(t, uint64(7), infos[0].Identifier)
	assert.Equal(t, uint64(1), infos[0].Sequence)
	assert.Equal(t, now, infos[1].Timestamp)
	assert.Equal(t, uint64(8), infos[1].Identifier)
	assert.WithinDuration(t, time.UnixMilli(int64(now)), infos[1].Time, time.Millisecond)

	t.Run("自定义纪元", func(t *testing.T) {
		id := snowflake.ID(snowflake.Pack(0, 1000, 1, 0))
		out, err := execute(t, "parse", "--epoch", "2020-01-01T00:00:00Z", id.String())
		require.NoError(t, err)
		var infos []core.IDInfo
		require.NoError(t, json.Unmarshal([]byte(out), &infos))
		want := time.Date(2020, 1, 1, 0, 0, 1, 0, time.UTC)
		assert.True(t, want.Equal(infos[0].Time), infos[0].Time)
	})

	t.Run("非法输入", func(t *testing.T) {
		_, err := execute(t, "parse", "abc")
		assert.Error(t, err)
		_, err = execute(t, "parse", "0")
		assert.Error(t, err)
		_, err = execute(t, "parse")
		assert.Error(t, err)
		_, err = execute(t, "parse", "--epoch", "yesterday", "1")
		assert.Error(t, err)
	})
}

func TestServeBadConfig(t *testing.T) {
	_, err := execute(t, "serve", "--config", "/nonexistent/idgen.yaml")
	assert.Error(t, err)
}
