// Package memory 提供有界上下文缓冲与滚动摘要压缩
//
// 核心模型：每个会话持有一个有界的活跃轮次缓冲区和一份滚动摘要。
// 缓冲区超过轮次或 Token 阈值时，压缩引擎将全部活跃轮次折叠进
// 摘要（整体折叠，不做部分压缩），缓冲区清空，版本递增。每条
// 原始轮次在追加时即归档到转录存储，压缩是否成功都不影响完整
// 转录的持久性。
//
// 并发模型：单线程同步执行。同一会话的状态不支持并发访问，由
// 调用方负责按会话串行化；包内核心类型不持有锁。摘要与存储调用
// 是阻塞 I/O，超时由具体实现通过 context 自行约束。
package memory
