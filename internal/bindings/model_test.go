package bindings

import "testing"

func TestCanonicalStringSortsNDKAbis(t *testing.T) {
	binding := Kotlin{MinSDK: 21, JVMTarget: "1.8", NDKAbis: []string{"x86_64", "arm64-v8a"}}
	want := "kotlin:min_sdk=21;jvm_target=1.8;ndk_abis=arm64-v8a,x86_64"
	if got := binding.CanonicalString(); got != want {
		t.Fatalf("CanonicalString() = %q, want %q", got, want)
	}
}

func TestCanonicalStringPerLanguage(t *testing.T) {
	cases := []struct {
		binding Metadata
		want    string
	}{
		{Swift{Toolchain: "5.9", DeploymentTarget: "13.0"}, "swift:toolchain=5.9;deployment_target=13.0"},
		{Python{AbiTag: "cp311", PlatformTag: "manylinux_2_28"}, "python:abi_tag=cp311;platform_tag=manylinux_2_28"},
		{Dart{SDKConstraint: "3.0", FFIAbi: "1"}, "dart:sdk_constraint=3.0;ffi_abi=1"},
	}
	for _, c := range cases {
		if got := c.binding.CanonicalString(); got != c.want {
			t.Errorf("%v.CanonicalString() = %q, want %q", c.binding.Language(), got, c.want)
		}
	}
}

func TestSetCanonicalStringIsOrderIndependent(t *testing.T) {
	forward := Set{Bindings: []Metadata{
		Dart{SDKConstraint: "3.0", FFIAbi: "1"},
		Swift{Toolchain: "5.9", DeploymentTarget: "13.0"},
	}}
	reversed := Set{Bindings: []Metadata{
		Swift{Toolchain: "5.9", DeploymentTarget: "13.0"},
		Dart{SDKConstraint: "3.0", FFIAbi: "1"},
	}}
	if forward.CanonicalString() != reversed.CanonicalString() {
		t.Fatalf("set canonical string depends on declaration order: %q != %q",
			forward.CanonicalString(), reversed.CanonicalString())
	}
	want := "dart:sdk_constraint=3.0;ffi_abi=1|swift:toolchain=5.9;deployment_target=13.0"
	if got := forward.CanonicalString(); got != want {
		t.Fatalf("CanonicalString() = %q, want %q", got, want)
	}
}

func TestEmptySetCanonicalizesToEmptyString(t *testing.T) {
	if got := (Set{}).CanonicalString(); got != "" {
		t.Fatalf("empty set CanonicalString() = %q, want empty", got)
	}
}

func TestValidateReportsMissingField(t *testing.T) {
	cases := []struct {
		binding Metadata
		field   string
	}{
		{Swift{Toolchain: "5.9"}, "deployment_target"},
		{Kotlin{MinSDK: 0, JVMTarget: "1.8", NDKAbis: []string{"x86_64"}}, "min_sdk"},
		{Kotlin{MinSDK: 21, JVMTarget: "1.8", NDKAbis: []string{" "}}, "ndk_abis"},
		{Python{AbiTag: "cp311"}, "platform_tag"},
		{Dart{FFIAbi: "1"}, "sdk_constraint"},
	}
	for _, c := range cases {
		err := c.binding.Validate()
		if err == nil {
			t.Errorf("%v.Validate() = nil, want missing-field error", c.binding.Language())
			continue
		}
		bindingErr, ok := err.(*Error)
		if !ok || bindingErr.Field != c.field {
			t.Errorf("%v.Validate() = %v, want missing field %q", c.binding.Language(), err, c.field)
		}
	}
}

func TestParseLanguageRejectsUnknown(t *testing.T) {
	if _, err := ParseLanguage("cobol"); err == nil {
		t.Fatal("expected error for unknown binding language")
	}
	lang, err := ParseLanguage("swift")
	if err != nil || lang != LanguageSwift {
		t.Fatalf("ParseLanguage(swift) = %v, %v", lang, err)
	}
}
