package engine

// DefaultCatalogue returns the 15 partner-training checkpoints in unlock order.
func DefaultCatalogue() []CheckpointDefinition {
	return []CheckpointDefinition{
		{
			ID: 0, X: 3, Y: 2,
			Video:         "Gestão de Tempo e Disponibilidade",
			Context:       "Você precisa abrir a loja na plataforma. A disponibilidade é crucial para o sucesso do parceiro.",
			Situation:     "A abertura e fechamento da loja na plataforma é feita de que forma?",
			Options:       []string{"Automático por agendamento", "Manual pelo botão verde", "Automático por horário cadastrado", "Feito pelo chat suporte"},
			CorrectOption: 1,
			Hint:          "Sempre use o botão verde de abrir/fechar loja.",
			Type:          QuestionMultiple,
		},
		{
			ID: 1, X: 6, Y: 3,
			Video:         "Taxa de Disponibilidade",
			Context:       "A taxa de disponibilidade é um dos KPIs mais importantes para parceiros.",
			Situation:     "Taxa de disponibilidade mede qual aspecto da operação?",
			Options:       []string{"Pedidos aceitos/recebidos", "Tempo aberto vs horário cadastrado", "Tempo médio de entrega", "Quantidade de itens ativos"},
			CorrectOption: 1,
			Hint:          "Disponibilidade = tempo que a loja ficou aberta.",
			Type:          QuestionMultiple,
		},
		{
			ID: 2, X: 9, Y: 2,
			Video:         "Portfólio Ideal",
			Context:       "Um cliente não encontrou o produto desejado. O portfólio é fundamental para satisfação.",
			Situation:     "Qual é a definição de portfólio ideal no Zé Delivery?",
			Options:       []string{"Apenas cervejas premium", "% de itens recomendados ativos e disponíveis", "Apenas itens com nota 5", "Produtos sem marca própria"},
			CorrectOption: 1,
			Hint:          "Mantenha itens recomendados sempre ativos e prontos.",
			Type:          QuestionMultiple,
		},
		{
			ID: 3, X: 13, Y: 3,
			Video:         "Taxa de Aceitação",
			Context:       "Chegam vários pedidos simultaneamente. A gestão da aceitação impacta diretamente nos resultados.",
			Situation:     "O que mais prejudica a taxa de aceitação?",
			Options:       []string{"Pedidos expirados/rejeitados/cancelados", "Abrir loja mais cedo", "Ter mais entregadores", "Portfólio diversificado"},
			CorrectOption: 0,
			Hint:          "Aceite pedidos em até 3 minutos para evitar expiração.",
			Type:          QuestionMultiple,
		},
		{
			ID: 4, X: 2, Y: 5,
			Video:         "Sistema de Rastreamento",
			Context:       "Cliente quer acompanhar seu pedido em tempo real. O rastreamento é essencial para transparência.",
			Situation:     "Para garantir boa taxa de rastreamento, o que é necessário?",
			Options:       []string{"GPS habilitado + finalizar no cliente", "Apenas conexão Wi-Fi", "Não usar app do entregador", "Desativar dados móveis"},
			CorrectOption: 0,
			Hint:          "App do entregador + GPS sempre ativo.",
			Type:          QuestionMultiple,
		},
		{
			ID: 5, X: 5, Y: 5,
			Video:         "Otimização de Entregas",
			Context:       "Você tem múltiplas entregas para fazer. A rota escolhida impacta o tempo de entrega.",
			Situation:     "Qual é a melhor estratégia para otimizar rotas de entrega?",
			Options:       []string{"Entregar por ordem de chegada", "Agrupar por proximidade geográfica", "Priorizar pedidos maiores", "Usar apenas uma rota fixa"},
			CorrectOption: 1,
			Hint:          "Agrupe entregas por região para economizar tempo.",
			Type:          QuestionMultiple,
		},
		{
			ID: 6, X: 8, Y: 4,
			Video:         "Excelência no Atendimento",
			Context:       "Um cliente reclama de um produto com defeito. O atendimento define a experiência.",
			Situation:     "Como deve ser a abordagem ideal no atendimento ao cliente?",
			Options:       []string{"Negar responsabilidade", "Ouvir, entender e solucionar rapidamente", "Transferir para o suporte", "Oferecer desconto sempre"},
			CorrectOption: 1,
			Hint:          "Empatia e solução rápida geram satisfação.",
			Type:          QuestionMultiple,
		},
		{
			ID: 7, X: 11, Y: 4,
			Video:         "Controle de Estoque",
			Context:       "Seu estoque está baixo e pedidos continuam chegando. A gestão preventiva é crucial.",
			Situation:     "Qual é a frequência ideal para atualizar o estoque na plataforma?",
			Options:       []string{"Uma vez por semana", "Diariamente no início do dia", "Em tempo real conforme vendas", "Apenas quando acabar"},
			CorrectOption: 2,
			Hint:          "Atualize em tempo real para evitar vendas de produtos indisponíveis.",
			Type:          QuestionMultiple,
		},
		{
			ID: 8, X: 14, Y: 5,
			Video:         "Cuidado com Produtos",
			Context:       "Produtos frágeis precisam de cuidado especial no transporte e armazenamento.",
			Situation:     "Como prevenir avarias em produtos sensíveis?",
			Options:       []string{"Embalar adequadamente + manter temperatura", "Transportar rapidamente", "Usar apenas sacolas plásticas", "Evitar produtos frágeis"},
			CorrectOption: 0,
			Hint:          "Embalagem correta e controle de temperatura são essenciais.",
			Type:          QuestionMultiple,
		},
		{
			ID: 9, X: 4, Y: 7,
			Video:         "Segurança Operacional",
			Context:       "Durante as entregas, a segurança deve ser sempre prioridade para você e seus clientes.",
			Situation:     "Qual protocolo de segurança é fundamental para entregadores?",
			Options:       []string{"Correr para entregar rápido", "Usar equipamentos de proteção + seguir trânsito", "Economizar combustível", "Trabalhar apenas de dia"},
			CorrectOption: 1,
			Hint:          "EPIs e respeito às leis de trânsito salvam vidas.",
			Type:          QuestionMultiple,
		},
		{
			ID: 10, X: 7, Y: 6,
			Video:         "Estratégias de Marketing",
			Context:       "As vendas estão baixas e você quer aumentar a visibilidade da sua loja.",
			Situation:     "Qual estratégia de marketing é mais eficaz para parceiros?",
			Options:       []string{"Apenas preços baixos", "Participar de campanhas + produtos em destaque", "Não fazer promoções", "Copiar concorrentes"},
			CorrectOption: 1,
			Hint:          "Campanhas da plataforma + destaque de produtos aumentam vendas.",
			Type:          QuestionMultiple,
		},
		{
			ID: 11, X: 10, Y: 6,
			Video:         "Controle Financeiro",
			Context:       "É essencial acompanhar custos, receitas e margem de lucro para manter o negócio saudável.",
			Situation:     "Qual é o principal indicador financeiro que um parceiro deve acompanhar?",
			Options:       []string{"Apenas faturamento bruto", "Margem líquida por produto vendido", "Número total de pedidos", "Velocidade de entrega"},
			CorrectOption: 1,
			Hint:          "Margem líquida mostra a real lucratividade do negócio.",
			Type:          QuestionMultiple,
		},
		{
			ID: 12, X: 3, Y: 8,
			Video:         "Parcerias Estratégicas",
			Context:       "Bons fornecedores são essenciais para manter qualidade e preços competitivos.",
			Situation:     "Como construir relacionamentos sólidos com fornecedores?",
			Options:       []string{"Sempre escolher o mais barato", "Negociar prazos + manter pagamentos em dia", "Trocar constantemente", "Pagar apenas à vista"},
			CorrectOption: 1,
			Hint:          "Confiança mútua e pontualidade fortalecem parcerias.",
			Type:          QuestionMultiple,
		},
		{
			ID: 13, X: 6, Y: 8,
			Video:         "Práticas Sustentáveis",
			Context:       "Consumidores valorizam empresas que se preocupam com o meio ambiente.",
			Situation:     "Qual prática sustentável pode ser implementada facilmente?",
			Options:       []string{"Ignorar embalagens", "Usar sacolas reutilizáveis + reduzir desperdício", "Aumentar entregas", "Usar apenas descartáveis"},
			CorrectOption: 1,
			Hint:          "Pequenas ações sustentáveis fazem grande diferença.",
			Type:          QuestionMultiple,
		},
		{
			ID: 14, X: 9, Y: 8,
			Video:         "Inteligência de Dados",
			Context:       "Os dados do app fornecem insights valiosos para melhorar sua operação continuamente.",
			Situation:     "Qual métrica é mais importante para acompanhar diariamente?",
			Options:       []string{"Apenas número de pedidos", "KPIs combinados + tendências de vendas", "Somente reclamações", "Tempo online apenas"},
			CorrectOption: 1,
			Hint:          "Visão integrada dos KPIs revela oportunidades de melhoria.",
			Type:          QuestionMultiple,
		},
	}
}
