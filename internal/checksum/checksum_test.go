package checksum

import "testing"

func TestSum(t *testing.T) {
	// sha256("")
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different input, same digest")
	}
}

func TestJSON(t *testing.T) {
	a, err := JSON(map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := JSON(map[string]int{"a": 1, "b": 2})
	if a != b {
		t.Error("map key order changed the digest")
	}
	if want := Sum([]byte(`{"a":1,"b":2}`)); a != want {
		t.Errorf("JSON = %s, want %s", a, want)
	}
	if _, err := JSON(make(chan int)); err == nil {
		t.Error("unencodable value accepted")
	}
}
