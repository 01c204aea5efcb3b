// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package corefmt

import (
	"bytes"
	"strings"
	"testing"
)

func TestBase64URL(t *testing.T) {
	raw := []byte{0x00, 0xfb, 0x7e, 0x10, 0xff}
	s := EncodeBase64URL(raw)
	if strings.ContainsAny(s, "+/=") {
		t.Fatalf("不是 URL-safe 編碼: %q", s)
	}
	got, err := DecodeBase64URL(s)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip: %x vs %x", got, raw)
	}

	if _, err := DecodeBase64URL("@@not-base64@@"); err == nil {
		t.Fatal("壞輸入應該失敗")
	}
}
