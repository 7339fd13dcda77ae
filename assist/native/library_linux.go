package native

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Library is a loaded engine shared object. It implements [Binding].
type Library struct {
	handle uintptr

	assistantNew               func(callback uintptr) uintptr
	assistantFree              func(instance uintptr)
	assistantStart             func(instance uintptr)
	assistantSetAccessToken    func(instance uintptr, token string, length uint32)
	assistantSetMicMute        func(instance uintptr, muted bool)
	assistantStartConversation func(instance uintptr)
	assistantStopConversation  func(instance uintptr)
}

// Load opens the engine shared object at path and binds its C entry points.
func Load(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant library: %w", err)
	}

	lib := &Library{handle: handle}
	purego.RegisterLibFunc(&lib.assistantNew, handle, "assistant_new")
	purego.RegisterLibFunc(&lib.assistantFree, handle, "assistant_free")
	purego.RegisterLibFunc(&lib.assistantStart, handle, "assistant_start")
	purego.RegisterLibFunc(&lib.assistantSetAccessToken, handle, "assistant_set_access_token")
	purego.RegisterLibFunc(&lib.assistantSetMicMute, handle, "assistant_set_mic_mute")
	purego.RegisterLibFunc(&lib.assistantStartConversation, handle, "assistant_start_conversation")
	purego.RegisterLibFunc(&lib.assistantStopConversation, handle, "assistant_stop_conversation")

	return lib, nil
}

// NewInstance creates one engine session bound to callback.
//
// The callback trampoline copies the payload out of engine-owned memory
// before handing it to Go code; the engine may reuse the buffer as soon as
// the C callback returns.
func (l *Library) NewInstance(callback Callback) (Instance, error) {
	trampoline := purego.NewCallback(func(code uintptr, payload uintptr) uintptr {
		callback(int32(code), goBytes(payload))
		return 0
	})

	instance := l.assistantNew(trampoline)
	if instance == 0 {
		return nil, fmt.Errorf("assistant_new returned a null instance")
	}

	return &libraryInstance{library: l, instance: instance}, nil
}

// goBytes copies a NUL-terminated C string into Go-owned memory.
func goBytes(ptr uintptr) []byte {
	if ptr == 0 {
		return nil
	}

	length := 0
	for *(*byte)(unsafe.Pointer(ptr + uintptr(length))) != 0 {
		length++
	}
	if length == 0 {
		return nil
	}

	return append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length)...)
}

type libraryInstance struct {
	library  *Library
	instance uintptr
}

func (i *libraryInstance) Start() {
	i.library.assistantStart(i.instance)
}

func (i *libraryInstance) SetAccessToken(token []byte) {
	i.library.assistantSetAccessToken(i.instance, string(token), uint32(len(token)))
}

func (i *libraryInstance) SetMicMute(muted bool) {
	i.library.assistantSetMicMute(i.instance, muted)
}

func (i *libraryInstance) StartConversation() {
	i.library.assistantStartConversation(i.instance)
}

func (i *libraryInstance) StopConversation() {
	i.library.assistantStopConversation(i.instance)
}

func (i *libraryInstance) Destroy() {
	i.library.assistantFree(i.instance)
}
