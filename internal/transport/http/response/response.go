package response

type Resp struct {
	Code   int         `json:"code"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data"`
	Errors []string    `json:"errors,omitempty"`
	// Detail 仅开发环境填充
	Detail string `json:"detail,omitempty"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// WithErrors 附带逐项校验信息
func (r Resp) WithErrors(errs ...string) Resp {
	r.Errors = errs
	return r
}

func (r Resp) WithDetail(d string) Resp {
	r.Detail = d
	return r
}
