package lexical

import (
	"context"
	"testing"

	"smellsense/internal/parse"
	"smellsense/internal/smells"
	"smellsense/internal/syntax"
	"smellsense/internal/unit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func build(t *testing.T, lang syntax.Language, source string) *unit.CodeUnit {
	t.Helper()
	registry, err := parse.NewDefaultRegistry(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	u, err := unit.NewBuilder(registry, nil, zap.NewNop()).
		Build(context.Background(), unit.Input{Source: source, Language: lang})
	require.NoError(t, err)
	return u
}

// detect runs a detector and returns its single finding, or nil
func detect(t *testing.T, d smells.Detector, lang syntax.Language, source string) *smells.Finding {
	t.Helper()
	findings := d.Detect(context.Background(), build(t, lang, source))
	if len(findings) == 0 {
		return nil
	}
	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, d.Kind(), f.Kind)
	assert.Equal(t, d.Name(), f.Detector)
	return &f
}

func TestSaturatingScale(t *testing.T) {
	d := NewMagicNumbersDetector(DefaultThresholds().MagicNumbers, DefaultThresholds().Scale)

	one := detect(t, d, syntax.LanguagePython, "def f(x):\n    return x * 42\n")
	two := detect(t, d, syntax.LanguagePython, "def f(x):\n    return x * 42 + 17\n")
	three := detect(t, d, syntax.LanguagePython, "def f(x):\n    return x * 42 + 17 - 99\n")
	require.NotNil(t, one)
	require.NotNil(t, two)
	require.NotNil(t, three)

	assert.InDelta(t, 0.45, one.Confidence, 1e-9)
	assert.InDelta(t, 0.6975, two.Confidence, 1e-9)
	assert.InDelta(t, 0.833625, three.Confidence, 1e-9)
}

func TestMagicNumbers(t *testing.T) {
	d := NewMagicNumbersDetector(DefaultThresholds().MagicNumbers, DefaultThresholds().Scale)

	java := `public class Pricing {
    private static final double TAX = 0.21;
    private final int LIMIT = 500;

    public double price(double base) {
        if (base > 100) {
            return base * 0.9;
        }
        int none = -1;
        return base * 1 + 2 - 1;
    }
}
`
	f := detect(t, d, syntax.LanguageJava, java)
	require.NotNil(t, f)
	assert.Equal(t, "2 unnamed numeric literal(s): line 6: 100; line 7: 0.9", f.Evidence)

	python := "MAX_RETRIES = 5\n\ndef retry(call):\n    timeout = 30\n    return call(timeout, MAX_RETRIES)\n"
	f = detect(t, d, syntax.LanguagePython, python)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "line 4: 30")
	assert.NotContains(t, f.Evidence, ": 5")

	golang := "package limits\n\nconst maxItems = 50\n\nfunc Cap(n int) int {\n\tif n > maxItems {\n\t\treturn maxItems\n\t}\n\treturn n\n}\n"
	assert.Nil(t, detect(t, d, syntax.LanguageGo, golang))
}

func TestRawTypes(t *testing.T) {
	d := NewRawTypesDetector(DefaultThresholds().RawTypes, DefaultThresholds().Scale)

	java := `public class Inventory {
    private List items;
    private Map<String, Integer> counts;

    public void load() {
        List<String> names = new ArrayList();
    }
}
`
	f := detect(t, d, syntax.LanguageJava, java)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "line 2: List without type arguments")
	assert.Contains(t, f.Evidence, "line 6: ArrayList without type arguments")
	assert.NotContains(t, f.Evidence, "Map")
	assert.Contains(t, f.Evidence, "2 raw generic type use(s)")

	typed := "public class Inventory {\n    private List<String> items = new ArrayList<>();\n}\n"
	assert.Nil(t, detect(t, d, syntax.LanguageJava, typed))
}

func TestRawTypesPython(t *testing.T) {
	d := NewRawTypesDetector(DefaultThresholds().RawTypes, DefaultThresholds().Scale)

	f := detect(t, d, syntax.LanguagePython, "def group(items: List) -> int:\n    return len(items)\n")
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "List without type arguments")
}

func TestUnnecessaryBoxing(t *testing.T) {
	d := NewUnnecessaryBoxingDetector(DefaultThresholds().Scale)

	java := `public int parse(String s) {
    Integer boxed = new Integer(5);
    int value = Integer.valueOf(s).intValue();
    return value + boxed;
}
`
	f := detect(t, d, syntax.LanguageJava, java)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "line 2: `new Integer(5)` constructs a wrapper explicitly")
	assert.Contains(t, f.Evidence, "line 3: `Integer.valueOf(s).intValue()` boxes and immediately unboxes")

	plain := "public int parse(String s) {\n    return Integer.parseInt(s);\n}\n"
	assert.Nil(t, detect(t, d, syntax.LanguageJava, plain))
}

func TestBadNaming(t *testing.T) {
	d := NewBadNamingDetector(DefaultThresholds().Naming, DefaultThresholds().Scale)

	java := `public class order_manager {
    private int a1;

    public void DoStuff(String data) {
        int x = 0;
    }
}
`
	f := detect(t, d, syntax.LanguageJava, java)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, `class "order_manager" breaks java naming convention`)
	assert.Contains(t, f.Evidence, `field "a1" is a letter+digit name`)
	assert.Contains(t, f.Evidence, `method "DoStuff" breaks java naming convention`)
	assert.Contains(t, f.Evidence, `parameter "data" is too generic`)
	assert.NotContains(t, f.Evidence, `"x"`)

	python := "class Account:\n    def getBalance(self, amt):\n        tmp = 1\n        return amt + tmp\n"
	f = detect(t, d, syntax.LanguagePython, python)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, `method "getBalance" breaks python naming convention`)
	assert.Contains(t, f.Evidence, `local "tmp" is too generic`)

	good := `public class OrderService {
    private static final int MAX_ITEMS = 10;
    private final OrderRepository repository;

    public OrderService(OrderRepository repository) {
        this.repository = repository;
    }

    public int countOpenOrders(String customerId) {
        int total = repository.countOpen(customerId);
        return total;
    }
}
`
	assert.Nil(t, detect(t, d, syntax.LanguageJava, good))
}

func TestSwallowedException(t *testing.T) {
	d := NewSwallowedExceptionDetector(DefaultThresholds().Scale)

	java := `public void sync() {
    try {
        run();
    } catch (IllegalStateException e) {
        // ignored
    }
    try {
        run();
    } catch (IOException e) {
        e.printStackTrace();
    } catch (RuntimeException e) {
        log.error("sync failed", e);
        throw e;
    }
}
`
	f := detect(t, d, syntax.LanguageJava, java)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "2 swallowed error(s)")
	assert.Contains(t, f.Evidence, "is empty")
	assert.Contains(t, f.Evidence, "only prints the error")

	python := "def load():\n    try:\n        run()\n    except ValueError:\n        pass\n"
	f = detect(t, d, syntax.LanguagePython, python)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "only passes")

	golang := "package sync\n\nfunc Load() {\n\terr := run()\n\tif err != nil {\n\t}\n}\n"
	f = detect(t, d, syntax.LanguageGo, golang)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "line 5")

	handled := "package sync\n\nfunc Load() error {\n\tif err := run(); err != nil {\n\t\treturn err\n\t}\n\treturn nil\n}\n"
	assert.Nil(t, detect(t, d, syntax.LanguageGo, handled))
}

func TestGlobalState(t *testing.T) {
	d := NewGlobalStateDetector(DefaultThresholds().Scale)

	java := `public class Registry {
    static int count;
    static final int MAX = 3;
    private int size;
}
`
	f := detect(t, d, syntax.LanguageJava, java)
	require.NotNil(t, f)
	assert.Equal(t, "1 mutable global(s): line 2: static field count is mutable", f.Evidence)

	python := "counter = 0\nitems = []\n\ndef inc():\n    global counter\n    counter += 1\n"
	f = detect(t, d, syntax.LanguagePython, python)
	require.NotNil(t, f)
	assert.Contains(t, f.Evidence, "line 2: module-level items is mutable")
	assert.Contains(t, f.Evidence, "line 5: `global counter` rebinds module state")

	golang := "package reg\n\nimport \"errors\"\n\nvar registry = map[string]int{}\n\nvar ErrNotFound = errors.New(\"not found\")\n"
	f = detect(t, d, syntax.LanguageGo, golang)
	require.NotNil(t, f)
	assert.Equal(t, "1 mutable global(s): line 5: package-level var registry", f.Evidence)
}

func TestLexicalDetectorsSkipUnparsed(t *testing.T) {
	u := build(t, syntax.LanguagePython, "x = '\xff'")
	th := DefaultThresholds()
	for _, d := range []smells.Detector{
		NewMagicNumbersDetector(th.MagicNumbers, th.Scale),
		NewRawTypesDetector(th.RawTypes, th.Scale),
		NewUnnecessaryBoxingDetector(th.Scale),
		NewBadNamingDetector(th.Naming, th.Scale),
		NewSwallowedExceptionDetector(th.Scale),
		NewGlobalStateDetector(th.Scale),
	} {
		assert.Empty(t, d.Detect(context.Background(), u), d.Name())
	}
}
