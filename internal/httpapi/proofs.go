// Proof handlers: multipart upload and retrieval of supporting documents.
package httpapi

import (
	"io"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/kasbuku/kasbuku/internal/proofs"
)

type proofResponse struct {
	ProofRef string `json:"proof_ref"`
}

// postProof accepts a multipart form with a single "file" part and returns the
// reference to attach to a transaction via proof_ref.
func (s *Server) postProof(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(proofs.MaxSize); err != nil {
		badRequest(w, "multipart form with a file part is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file part is required")
		return
	}
	defer file.Close()

	ref, err := s.proofStore.Save(header.Filename, file)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	toJSON(w, http.StatusCreated, proofResponse{ProofRef: ref})
}

func (s *Server) getProof(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	f, err := s.proofStore.Open(ref)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+ref+"\"")
	if _, err := io.Copy(w, f); err != nil {
		s.log.Error("proof stream interrupted", "ref", ref, "err", err)
	}
}
