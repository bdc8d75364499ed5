package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	// 认证页面
	"auth.signin_title":      "登录",
	"auth.signup_title":      "注册账号",
	"auth.email":             "邮箱",
	"auth.password":          "密码",
	"auth.confirm":           "确认密码",
	"auth.submit_signin":     "登录",
	"auth.submit_signup":     "注册",
	"auth.signing_in":        "登录中...",
	"auth.creating_account":  "注册中...",
	"auth.to_signup":         "还没有账号？ctrl+s 去注册",
	"auth.to_signin":         "已有账号？ctrl+s 去登录",
	"auth.missing_fields":    "邮箱和密码不能为空",
	"auth.password_mismatch": "两次输入的密码不一致",

	// 任务面板
	"tasks.title":          "我的任务",
	"tasks.loading":        "正在加载任务...",
	"tasks.empty":          "暂无任务，按 n 新建。",
	"tasks.empty_filtered": "没有%s任务。",
	"tasks.stats":          "共 %d 个 · 进行中 %d · 已完成 %d",
	"tasks.signed_in_as":   "当前用户 %s",
	"tasks.form_new":       "新建任务",
	"tasks.form_edit":      "编辑任务",
	"tasks.field_title":    "标题",
	"tasks.field_desc":     "描述",
	"tasks.title_required": "标题不能为空",
	"tasks.confirm_delete": "确认删除 %q？[y/N]",
	"tasks.saving":         "保存中...",

	// 过滤器
	"filter.all":       "全部",
	"filter.active":    "进行中",
	"filter.completed": "已完成",

	// 助手聊天
	"chat.title":          "助手",
	"chat.empty":          "可以问我任何关于任务的问题。",
	"chat.placeholder":    "输入消息...（回车发送）",
	"chat.thinking":       "思考中...",
	"chat.new":            "新会话",
	"chat.history":        "历史会话",
	"chat.confirm_delete": "确认删除该会话？[y/N]",

	// 状态栏
	"status.ready":           "就绪",
	"status.session_expired": "会话已过期，请重新登录。",
	"status.signed_out":      "已退出登录",

	// 错误
	"error.network": "网络错误：%s",
	"error.auth":    "认证失败：%s",

	// 快捷键提示文案，按键名由绑定本身渲染
	"keys.quit":     "退出",
	"keys.chat":     "助手",
	"keys.new":      "新建",
	"keys.edit":     "编辑",
	"keys.delete":   "删除",
	"keys.toggle":   "切换完成",
	"keys.filter":   "过滤",
	"keys.logout":   "退出登录",
	"keys.save":     "保存",
	"keys.field":    "切换输入框",
	"keys.cancel":   "取消",
	"keys.new_chat": "新会话",
	"keys.history":  "历史",

	// 启动
	"startup.welcome": "taskdeck 已连接到 %s",
}
