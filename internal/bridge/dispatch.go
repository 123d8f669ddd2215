package bridge

import (
	"encoding/json"
	"fmt"
)

// Request is one host call carried over a wire transport.
type Request struct {
	ID   uint64            `json:"id"`
	Op   string            `json:"op"`
	Args []json.RawMessage `json:"args,omitempty"`
}

// Response answers a Request. Reply holds the host's return value verbatim:
// an envelope for file calls, a plain string for value-returning system calls,
// empty for fire-and-forget calls. Error is set only for transport-level
// problems (unknown op, bad arguments).
type Response struct {
	ID    uint64 `json:"id"`
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// Op names match the native bridge method names.
const (
	OpReadFile         = "readFile"
	OpWriteFile        = "writeFile"
	OpListFiles        = "listFiles"
	OpCreateFile       = "createFile"
	OpDeleteFile       = "deleteFile"
	OpRenameFile       = "renameFile"
	OpExists           = "exists"
	OpWorkspaceDir     = "getWorkspaceDir"
	OpShowToast        = "showToast"
	OpGetConfig        = "getConfig"
	OpSetConfig        = "setConfig"
	OpGetConfigs       = "getConfigs"
	OpSetConfigs       = "setConfigs"
	OpVibrate          = "vibrate"
	OpCopyToClipboard  = "copyToClipboard"
	OpGetClipboardText = "getClipboardText"
	OpLog              = "log"
)

type argReader struct {
	args []json.RawMessage
	err  error
}

func (r *argReader) at(i int, v any) {
	if r.err != nil {
		return
	}
	if i >= len(r.args) {
		r.err = fmt.Errorf("missing argument %d", i)
		return
	}
	if err := json.Unmarshal(r.args[i], v); err != nil {
		r.err = fmt.Errorf("argument %d: %w", i, err)
	}
}

func (r *argReader) str(i int) string {
	var s string
	r.at(i, &s)
	return s
}

// Dispatch executes req against h.
func Dispatch(h Host, req Request) Response {
	r := &argReader{args: req.Args}
	resp := Response{ID: req.ID}

	switch req.Op {
	case OpReadFile:
		p := r.str(0)
		if r.err == nil {
			resp.Reply = h.ReadFile(p)
		}
	case OpWriteFile:
		p, content := r.str(0), r.str(1)
		if r.err == nil {
			resp.Reply = h.WriteFile(p, content)
		}
	case OpListFiles:
		p := r.str(0)
		if r.err == nil {
			resp.Reply = h.ListFiles(p)
		}
	case OpCreateFile:
		p := r.str(0)
		var isDir bool
		r.at(1, &isDir)
		if r.err == nil {
			resp.Reply = h.CreateFile(p, isDir)
		}
	case OpDeleteFile:
		p := r.str(0)
		if r.err == nil {
			resp.Reply = h.DeleteFile(p)
		}
	case OpRenameFile:
		from, to := r.str(0), r.str(1)
		if r.err == nil {
			resp.Reply = h.RenameFile(from, to)
		}
	case OpExists:
		p := r.str(0)
		if r.err == nil {
			resp.Reply = h.Exists(p)
		}
	case OpWorkspaceDir:
		resp.Reply = h.WorkspaceDir()
	case OpShowToast:
		msg, dur := r.str(0), r.str(1)
		if r.err == nil {
			h.ShowToast(msg, dur)
		}
	case OpGetConfig:
		k := r.str(0)
		if r.err == nil {
			resp.Reply = h.GetConfig(k)
		}
	case OpSetConfig:
		k, v := r.str(0), r.str(1)
		if r.err == nil {
			h.SetConfig(k, v)
		}
	case OpGetConfigs:
		keys := r.str(0)
		if r.err == nil {
			resp.Reply = h.GetConfigs(keys)
		}
	case OpSetConfigs:
		values := r.str(0)
		if r.err == nil {
			h.SetConfigs(values)
		}
	case OpVibrate:
		var ms int64
		r.at(0, &ms)
		if r.err == nil {
			h.Vibrate(ms)
		}
	case OpCopyToClipboard:
		text := r.str(0)
		if r.err == nil {
			h.CopyToClipboard(text)
		}
	case OpGetClipboardText:
		resp.Reply = h.GetClipboardText()
	case OpLog:
		level, tag, msg := r.str(0), r.str(1), r.str(2)
		if r.err == nil {
			h.Log(level, tag, msg)
		}
	default:
		resp.Error = "unknown op: " + req.Op
		return resp
	}

	if r.err != nil {
		resp.Error = req.Op + ": " + r.err.Error()
	}
	return resp
}

// NewRequest builds a request, encoding each argument as JSON.
func NewRequest(id uint64, op string, args ...any) (Request, error) {
	req := Request{ID: id, Op: op}
	for _, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return Request{}, err
		}
		req.Args = append(req.Args, b)
	}
	return req, nil
}
