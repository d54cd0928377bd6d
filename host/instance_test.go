package host

import (
	"bytes"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semihalev/go-udf"
)

type concat struct{ rows int }

func newConcatLen(cfg *udf.InitConfig, args *udf.InitArgs) (*concat, error) {
	if err := udf.ExpectArgCount("concat_len", args, 1, -1); err != nil {
		return nil, err
	}
	cfg.SetMaxLength(21)
	return &concat{}, nil
}

// ProcessRow returns the total byte length of text and decimal arguments,
// NULL when all of them are NULL, and fails on integer arguments.
func (c *concat) ProcessRow(args *udf.RowArgs) (udf.NullInt, error) {
	c.rows++
	var total int64
	seen := false
	for v := range args.Values() {
		if v.Type() == udf.INT_RESULT {
			return udf.NullInt{}, errors.New("integers not allowed")
		}
		if b, ok := v.Text(); ok {
			total += int64(len(b))
			seen = true
		}
		if b, ok := v.Decimal(); ok {
			total += int64(len(b))
			seen = true
		}
	}
	if !seen {
		return udf.NullInt{}, nil
	}
	return udf.SomeInt(total), nil
}

var concatLen = udf.Define[*concat, udf.NullInt, int64]("concat_len", newConcatLen)

func TestInstanceLifecycle(t *testing.T) {
	before := udf.LiveInstances()
	in := NewInstance(concatLen)
	assert.Equal(t, StateUninitialized, in.State())
	assert.NotEmpty(t, in.ID)

	require.NoError(t, in.Init([]Value{Null(udf.STRING_RESULT).Named("name"), Null(udf.DECIMAL_RESULT)}))
	assert.Equal(t, StateActive, in.State())
	assert.Equal(t, Settings{MaybeNull: true, MaxLength: 21}, in.Settings())
	assert.Equal(t, before+1, udf.LiveInstances())

	res, err := in.Row([]Value{String("abc"), Decimal("1.50")})
	require.NoError(t, err)
	assert.Equal(t, udf.RowResult{Int: 7}, res)

	res, err = in.Row([]Value{String(""), Null(udf.DECIMAL_RESULT)})
	require.NoError(t, err)
	assert.Equal(t, udf.RowResult{Int: 0}, res, "empty string is not NULL")

	res, err = in.Row([]Value{Null(udf.STRING_RESULT), Null(udf.DECIMAL_RESULT)})
	require.NoError(t, err)
	assert.Equal(t, udf.RowResult{Null: true}, res)

	res, err = in.Row([]Value{Int(1)})
	require.NoError(t, err)
	assert.Equal(t, udf.RowResult{Error: true}, res)

	require.NoError(t, in.Deinit())
	assert.Equal(t, StateTornDown, in.State())
	assert.Equal(t, before, udf.LiveInstances())
}

func TestInstanceOrderEnforced(t *testing.T) {
	in := NewInstance(concatLen)

	_, err := in.Row([]Value{String("a")})
	assert.True(t, udf.IsError(err, udf.ErrLifecycle), "row before init")
	assert.True(t, udf.IsError(in.Deinit(), udf.ErrLifecycle), "deinit before init")

	require.NoError(t, in.Init([]Value{String("a")}))
	assert.True(t, udf.IsError(in.Init(nil), udf.ErrLifecycle), "second init")
	require.NoError(t, in.Deinit())

	_, err = in.Row([]Value{String("a")})
	assert.True(t, udf.IsError(err, udf.ErrLifecycle), "row after deinit")
	assert.True(t, udf.IsError(in.Deinit(), udf.ErrLifecycle), "second deinit")
}

func TestInstanceInitFailure(t *testing.T) {
	before := udf.LiveInstances()
	in := NewInstance(concatLen)

	err := in.Init(nil)
	require.Error(t, err)
	assert.True(t, udf.IsError(err, udf.ErrSetup))
	assert.Equal(t, "concat_len requires at least 1 arguments, got 0", err.Error())
	assert.Equal(t, StateFailed, in.State())
	assert.Equal(t, before, udf.LiveInstances())

	_, err = in.Row([]Value{String("a")})
	assert.True(t, udf.IsError(err, udf.ErrLifecycle))
	assert.True(t, udf.IsError(in.Deinit(), udf.ErrLifecycle))
}

func TestInstance_Logs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	in := NewInstance(concatLen)
	require.NoError(t, in.Init([]Value{String("abc")}))
	require.NoError(t, in.Deinit())
	assert.Contains(t, buf.String(), "[DEBUG] instance "+in.ID+" of concat_len initialized with 1 args")
	assert.Contains(t, buf.String(), "[DEBUG] instance "+in.ID+" of concat_len torn down")

	buf.Reset()
	failed := NewInstance(concatLen)
	require.Error(t, failed.Init(nil))
	assert.Contains(t, buf.String(), "of concat_len failed init: concat_len requires at least 1 argument")
}
