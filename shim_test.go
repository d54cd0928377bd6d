package udf

import (
	"errors"
	"strings"
	"testing"
)

type countArgs struct{}

func newCountArgs(*InitConfig, *InitArgs) (countArgs, error) { return countArgs{}, nil }

func (countArgs) ProcessRow(args *RowArgs) (Int, error) { return Int(args.Len()), nil }

type intSum struct {
	rows  int
	close int
}

func newIntSum(_ *InitConfig, args *InitArgs) (*intSum, error) {
	if err := ExpectTypes("int_sum", args, INT_RESULT); err != nil {
		return nil, err
	}
	return &intSum{}, nil
}

func (s *intSum) ProcessRow(args *RowArgs) (Int, error) {
	s.rows++
	var total int64
	for v := range args.Values() {
		if i, ok := v.Int(); ok {
			total += i
		}
	}
	return Int(total), nil
}

func (s *intSum) Close() error {
	s.close++
	return nil
}

// firstReal returns the first real argument, NULL if there is none, and
// fails on negative values.
type firstReal struct{}

func newFirstReal(cfg *InitConfig, _ *InitArgs) (firstReal, error) {
	cfg.SetDecimals(3)
	cfg.SetMaxLength(20)
	cfg.SetConstItem(true)
	return firstReal{}, nil
}

func (firstReal) ProcessRow(args *RowArgs) (NullReal, error) {
	for v := range args.Values() {
		if f, ok := v.Real(); ok {
			if f < 0 {
				return NullReal{}, errors.New("negative")
			}
			return SomeReal(f), nil
		}
	}
	return NullReal{}, nil
}

type panicky struct{ inRow bool }

func (p panicky) ProcessRow(*RowArgs) (Int, error) {
	if p.inRow {
		panic("row boom")
	}
	return 1, nil
}

var (
	countDef     = Define[countArgs, Int, int64]("count_args", newCountArgs)
	intSumDef    = Define[*intSum, Int, int64]("int_sum", newIntSum)
	firstRealDef = Define[firstReal, NullReal, float64]("first_real", newFirstReal)
)

func TestInitSetsMaybeNullFromOutput(t *testing.T) {
	// constructors that do not touch maybe_null see the shim default
	initid := &UDFInit{MaybeNull: 1}
	msg := newMsgBuf()
	if st := countDef.Init(initid, rawArgs(), &msg[0]); st != 0 {
		t.Fatalf("Expected init success, got status %d", st)
	}
	if initid.MaybeNull != 0 {
		t.Errorf("Int output must declare maybe_null=0")
	}
	countDef.Deinit(initid)

	initid = &UDFInit{}
	if st := firstRealDef.Init(initid, rawArgs(), &msg[0]); st != 0 {
		t.Fatalf("Expected init success, got status %d", st)
	}
	defer firstRealDef.Deinit(initid)
	if initid.MaybeNull != 1 {
		t.Errorf("NullReal output must declare maybe_null=1")
	}
	if initid.Decimals != 3 || initid.MaxLength != 20 || initid.ConstItem != 1 {
		t.Errorf("Constructor settings not applied: %+v", *initid)
	}
}

func TestInitConstructorOverridesMaybeNull(t *testing.T) {
	def := Define[countArgs, Int, int64]("count_nullable", func(cfg *InitConfig, _ *InitArgs) (countArgs, error) {
		if cfg.MaybeNull() {
			t.Errorf("Expected maybe_null pre-set to false")
		}
		cfg.SetMaybeNull(true)
		return countArgs{}, nil
	})
	initid := &UDFInit{}
	msg := newMsgBuf()
	if st := def.Init(initid, rawArgs(), &msg[0]); st != 0 {
		t.Fatalf("Expected init success")
	}
	defer def.Deinit(initid)
	if initid.MaybeNull != 1 {
		t.Errorf("Constructor override of maybe_null was lost")
	}
}

func TestInitFailureReportsMessage(t *testing.T) {
	initid := &UDFInit{}
	msg := newMsgBuf()
	before := LiveInstances()

	st := intSumDef.Init(initid, rawArgs(realCell(1)), &msg[0])
	if st != 1 {
		t.Fatalf("Expected init failure, got status %d", st)
	}
	got := cString(msg)
	if !strings.Contains(got, "is not an integer") || !strings.Contains(got, "0") {
		t.Errorf("Unexpected message %q", got)
	}
	if initid.Ptr != 0 {
		t.Errorf("Failed init must not store a handle")
	}
	if LiveInstances() != before {
		t.Errorf("Failed init must not allocate an instance")
	}

	// deinit on a slot that never got a handle is harmless
	intSumDef.Deinit(initid)
}

func TestInitFailureLongMessage(t *testing.T) {
	long := strings.Repeat("x", 2*ErrMsgSize)
	def := Define[countArgs, Int, int64]("long_error", func(*InitConfig, *InitArgs) (countArgs, error) {
		return countArgs{}, errors.New(long)
	})
	initid := &UDFInit{}
	msg := newMsgBuf()
	if st := def.Init(initid, rawArgs(), &msg[0]); st != 1 {
		t.Fatalf("Expected init failure")
	}
	got := cString(msg)
	if got != long[:MaxErrMsgLen] {
		t.Errorf("Expected %d byte prefix, got %d bytes", MaxErrMsgLen, len(got))
	}
}

func TestLifecycleNoLeak(t *testing.T) {
	for _, k := range []int{0, 1, 5, 100} {
		before := LiveInstances()
		initid := &UDFInit{}
		msg := newMsgBuf()
		if st := intSumDef.Init(initid, rawArgs(intCell(1), intCell(2)), &msg[0]); st != 0 {
			t.Fatalf("Init failed: %s", cString(msg))
		}
		if initid.Ptr == 0 {
			t.Fatalf("Expected a handle after init")
		}
		inst := *loadInstance[*intSum](initid)

		for i := 0; i < k; i++ {
			var isNull, errFlag byte
			got := intSumDef.Row(initid, rawArgs(intCell(int64(i)), intCell(2)), &isNull, &errFlag)
			if got != int64(i)+2 || isNull != 0 || errFlag != 0 {
				t.Fatalf("Row %d: got %d null=%d err=%d", i, got, isNull, errFlag)
			}
		}
		if inst.rows != k {
			t.Errorf("Expected %d rows on the same instance, got %d", k, inst.rows)
		}

		intSumDef.Deinit(initid)
		if initid.Ptr != 0 {
			t.Errorf("Deinit must clear the handle slot")
		}
		if inst.close != 1 {
			t.Errorf("Expected Close once, got %d", inst.close)
		}
		if LiveInstances() != before {
			t.Errorf("k=%d: leaked instances, live %d, before %d", k, LiveInstances(), before)
		}

		// a second deinit finds an empty slot and does nothing
		intSumDef.Deinit(initid)
		if inst.close != 1 {
			t.Errorf("Second deinit must not close again")
		}
	}
}

func TestRowNullAndError(t *testing.T) {
	initid := &UDFInit{}
	msg := newMsgBuf()
	if st := firstRealDef.Init(initid, rawArgs(), &msg[0]); st != 0 {
		t.Fatalf("Init failed")
	}
	defer firstRealDef.Deinit(initid)

	var isNull, errFlag byte
	got := firstRealDef.Row(initid, rawArgs(intCell(1), realCell(4.5)), &isNull, &errFlag)
	if got != 4.5 || isNull != 0 || errFlag != 0 {
		t.Errorf("Expected 4.5, got %g null=%d err=%d", got, isNull, errFlag)
	}

	isNull, errFlag = 0, 0
	got = firstRealDef.Row(initid, rawArgs(intCell(1)), &isNull, &errFlag)
	if got != 0 || isNull != 1 || errFlag != 0 {
		t.Errorf("Expected NULL, got %g null=%d err=%d", got, isNull, errFlag)
	}

	isNull, errFlag = 0, 0
	got = firstRealDef.Row(initid, rawArgs(realCell(-1)), &isNull, &errFlag)
	if got != 0 || errFlag != 1 {
		t.Errorf("Expected error flag, got %g null=%d err=%d", got, isNull, errFlag)
	}

	// a failed row does not end the instance
	isNull, errFlag = 0, 0
	got = firstRealDef.Row(initid, rawArgs(realCell(2)), &isNull, &errFlag)
	if got != 2 || errFlag != 0 {
		t.Errorf("Expected 2 after a failed row, got %g err=%d", got, errFlag)
	}
}

func TestEvaluate(t *testing.T) {
	initid := &UDFInit{}
	msg := newMsgBuf()
	if st := countDef.Init(initid, rawArgs(), &msg[0]); st != 0 {
		t.Fatalf("Init failed")
	}
	defer countDef.Deinit(initid)

	res := countDef.Evaluate(initid, rawArgs(intCell(1), stringCell("a"), nullCell(REAL_RESULT)))
	if res.Int != 3 || res.Null || res.Error {
		t.Errorf("Expected 3, got %+v", res)
	}

	initid2 := &UDFInit{}
	if st := firstRealDef.Init(initid2, rawArgs(), &msg[0]); st != 0 {
		t.Fatalf("Init failed")
	}
	defer firstRealDef.Deinit(initid2)
	res = firstRealDef.Evaluate(initid2, rawArgs(realCell(1.25)))
	if res.Real != 1.25 || res.Null || res.Error {
		t.Errorf("Expected 1.25, got %+v", res)
	}
}

func TestPanicsBecomeFailures(t *testing.T) {
	def := Define[panicky, Int, int64]("panicky", func(_ *InitConfig, args *InitArgs) (panicky, error) {
		if args.Len() == 0 {
			panic("init boom")
		}
		return panicky{inRow: true}, nil
	})

	initid := &UDFInit{}
	msg := newMsgBuf()
	if st := def.Init(initid, rawArgs(), &msg[0]); st != 1 {
		t.Fatalf("Expected init failure from panic")
	}
	if got := cString(msg); !strings.Contains(got, "init boom") {
		t.Errorf("Expected panic text in message, got %q", got)
	}

	if st := def.Init(initid, rawArgs(intCell(1)), &msg[0]); st != 0 {
		t.Fatalf("Expected init success")
	}
	defer def.Deinit(initid)
	var isNull, errFlag byte
	def.Row(initid, rawArgs(intCell(1)), &isNull, &errFlag)
	if errFlag != 1 {
		t.Errorf("Expected error flag from row panic")
	}
}

func TestABIViolationIsNotAbsorbed(t *testing.T) {
	initid := &UDFInit{}
	msg := newMsgBuf()
	if st := intSumDef.Init(initid, rawArgs(), &msg[0]); st != 0 {
		t.Fatalf("Init failed")
	}
	defer intSumDef.Deinit(initid)

	bad := rawArgs(intCell(1))
	*bad.ArgType = ArgType(99)

	defer func() {
		if _, ok := recover().(*ABIError); !ok {
			t.Errorf("Expected *ABIError to propagate")
		}
	}()
	var isNull, errFlag byte
	intSumDef.Row(initid, bad, &isNull, &errFlag)
	t.Errorf("Row must not return for an unknown tag")
}

func TestIndependentInstances(t *testing.T) {
	a, b := &UDFInit{}, &UDFInit{}
	msg := newMsgBuf()
	if intSumDef.Init(a, rawArgs(), &msg[0]) != 0 || intSumDef.Init(b, rawArgs(), &msg[0]) != 0 {
		t.Fatalf("Init failed")
	}
	if a.Ptr == b.Ptr {
		t.Fatalf("Instances must get distinct handles")
	}
	var isNull, errFlag byte
	intSumDef.Row(a, rawArgs(), &isNull, &errFlag)
	intSumDef.Row(a, rawArgs(), &isNull, &errFlag)
	intSumDef.Row(b, rawArgs(), &isNull, &errFlag)

	if got := (*loadInstance[*intSum](a)).rows; got != 2 {
		t.Errorf("Expected 2 rows on a, got %d", got)
	}
	if got := (*loadInstance[*intSum](b)).rows; got != 1 {
		t.Errorf("Expected 1 row on b, got %d", got)
	}
	intSumDef.Deinit(a)
	intSumDef.Deinit(b)
}

func TestDefinitionMetadata(t *testing.T) {
	if intSumDef.Name() != "int_sum" {
		t.Errorf("Unexpected name %s", intSumDef.Name())
	}
	if intSumDef.ReturnType() != ReturnInteger || firstRealDef.ReturnType() != ReturnReal {
		t.Errorf("Unexpected return types")
	}
	var _ Binding = intSumDef
}
