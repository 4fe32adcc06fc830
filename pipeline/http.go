// Copyright 2026 The Otelturbine Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"io"
	"net/http"
)

// Handler adapts the pipeline to net/http for hosts that want a ready-made
// endpoint. It is a thin boundary translator: method, content type and body
// in, result status and message out. Hosts needing per-request injection call
// Pipeline.Push directly instead.
func Handler(p *Pipeline) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading request body", http.StatusBadRequest)
			return
		}
		res := p.Push().Do(r.Context(), r.Header.Get("Content-Type"), body)
		if res.Status == http.StatusNoContent {
			w.WriteHeader(res.Status)
			return
		}
		w.WriteHeader(res.Status)
		_, _ = io.WriteString(w, res.Message)
	})
}
