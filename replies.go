// Copyright (c) 2026 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ssbot

// Reply templates sent to users.
const (
	replyNotBound     = "未绑定，请先绑定用户"
	replyAlreadyBound = `已绑定,请回复 "解除绑定" 进行解绑`
	replyBindHelp     = "请按此格式回复绑定用户：\n绑定 [端口号] [密码]\n\n示例：\n绑定 2018 password"
	replyResetDay     = "每月%d日重置流量"
	replyChangeHelp   = "请按此格式回复更改密码：\n改密码 [密码]\n\n示例：\n改密码 password"
	replyPlaceholder  = "To be completed..."
	replyMenu         = "请回复数字：" +
		"\n1. 绑定/解绑用户" +
		"\n2. 查询剩余流量" +
		"\n3. 查询流量重置日期" +
		"\n4. 查询我的IP、端口号和密码" +
		"\n5. 更改密码" +
		"\n6. 查询其他"

	replyBindSuccess   = "绑定成功"
	replyBindFailed    = "端口或密码错误"
	replyUnbindSuccess = "解绑成功"

	replyChangeUnsupported = "该账号不支持修改密码"
	replyChangeSuccess     = "修改成功，新密码是：%s"
	replyChangeFailed      = "修改失败"

	replyTraffic = "总量：%s\n已用：%s\n剩余：%s"
	replyInfo    = "IP：%s\n端口：%s\n密码：%s"

	replyRuntime = "已运行%d天%d小时%d分%d秒"
)
