package render

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// Code is the result code carried by every failure of the display layer.
// The numeric values are stable and double as process exit statuses.
type Code int

const (
	CodeSuccess Code = iota

	CodeFailure
	CodeMallocFailure
	CodeGLFWFailure
	CodeSyncFailure
	CodeEnumerateFailure
	CodeCreateInstanceFailure
	CodeCreateDeviceFailure
	CodeCreateDescriptorPoolFailure
	CodeCreateSwapchainFailure
	CodeCreateRenderPassFailure
	CodeCreateImageViewFailure
	CodeCreateFramebufferFailure
	CodeCreateCommandPoolFailure
	CodeCreateCommandBufferFailure
	CodeCreateFenceFailure
	CodeCreateSemaphoreFailure

	CodeCreateInfoMissing
	CodeCreateInfoMissingValue

	CodeNoAvailablePhysicalDevices
	CodeNoAvailableGraphicsQueues
	CodeNoAvailableWSISupport

	CodeAcquireFailure
	CodeRecordFailure
	CodeSubmitFailure
	CodePresentFailure
)

var codeNames = map[Code]string{
	CodeSuccess:                     "success",
	CodeFailure:                     "failure",
	CodeMallocFailure:               "allocation failure",
	CodeGLFWFailure:                 "glfw failure",
	CodeSyncFailure:                 "synchronization failure",
	CodeEnumerateFailure:            "enumeration failure",
	CodeCreateInstanceFailure:       "create instance failure",
	CodeCreateDeviceFailure:         "create device failure",
	CodeCreateDescriptorPoolFailure: "create descriptor pool failure",
	CodeCreateSwapchainFailure:      "create swapchain failure",
	CodeCreateRenderPassFailure:     "create render pass failure",
	CodeCreateImageViewFailure:      "create image view failure",
	CodeCreateFramebufferFailure:    "create framebuffer failure",
	CodeCreateCommandPoolFailure:    "create command pool failure",
	CodeCreateCommandBufferFailure:  "create command buffer failure",
	CodeCreateFenceFailure:          "create fence failure",
	CodeCreateSemaphoreFailure:      "create semaphore failure",
	CodeCreateInfoMissing:           "create info missing",
	CodeCreateInfoMissingValue:      "create info missing value",
	CodeNoAvailablePhysicalDevices:  "no available physical devices",
	CodeNoAvailableGraphicsQueues:   "no available graphics queues",
	CodeNoAvailableWSISupport:       "no available wsi support",
	CodeAcquireFailure:              "acquire failure",
	CodeRecordFailure:               "record failure",
	CodeSubmitFailure:               "submit failure",
	CodePresentFailure:              "present failure",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error is a failure tagged with the operation that produced it and its
// result code.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("render: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Code.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fail builds an *Error. A nil err is allowed.
func Fail(code Code, op string, err error) error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf returns the result code of err. Errors that did not originate in
// this package report CodeFailure.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeFailure
}

// ErrOutOfDate and ErrSuboptimal are the two presentation results that are
// recovered by rebuilding the swapchain instead of being reported.
var (
	ErrOutOfDate  = errors.New("render: swapchain out of date")
	ErrSuboptimal = errors.New("render: swapchain suboptimal")
)

func NewError(retVal vulkan.Result) error {
	return newError(retVal, 2)
}

func newError(retVal vulkan.Result, skip int) error {
	if retVal != vulkan.Success {
		pc, _, _, ok := runtime.Caller(skip)
		if !ok {
			return fmt.Errorf("vulkan error: %w (%d)", vulkan.Error(retVal), retVal)
		}
		frame := newStackFrame(pc)
		return fmt.Errorf("vulkan error: %w (%d) on %s",
			vulkan.Error(retVal), retVal, frame.String())
	}
	return nil
}

func IsError(retVal vulkan.Result) bool {
	return retVal != vulkan.Success
}

// check converts a non-success result into an *Error with the given code.
func check(retVal vulkan.Result, code Code, op string) error {
	if !IsError(retVal) {
		return nil
	}
	return Fail(code, op, newError(retVal, 2))
}

func CheckError(err *error) {
	if v := recover(); v != nil {
		*err = Fail(CodeRecordFailure, "recover", fmt.Errorf("%+v", v))
	}
}

type stackFrame struct {
	function string
	file     string
	line     int
}

func newStackFrame(pc uintptr) stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return stackFrame{function: "unknown"}
	}
	file, line := fn.FileLine(pc)
	return stackFrame{
		function: fn.Name(),
		file:     file,
		line:     line,
	}
}

func (f stackFrame) String() string {
	if f.file == "" {
		return f.function
	}
	return fmt.Sprintf("%s (%s:%d)", f.function, f.file, f.line)
}
